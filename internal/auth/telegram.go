package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/tidwall/gjson"
)

// webAppDataKey is the HMAC key Telegram uses to derive the per-bot secret
const webAppDataKey = "WebAppData"

// MaxClockSkew is how far in the future auth_date may be
const MaxClockSkew = time.Minute

// TelegramUser is the identity carried by a verified init data blob
type TelegramUser struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	AuthDate  time.Time
}

// InitDataVerifier validates Telegram Mini App init data signed with a bot token
type InitDataVerifier struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewInitDataVerifier creates a verifier for the given bot token.
// Init data older than maxAge is rejected.
func NewInitDataVerifier(botToken string, maxAge time.Duration) *InitDataVerifier {
	return &InitDataVerifier{
		secret: deriveSecret(botToken),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for the freshness check
func (v *InitDataVerifier) WithClock(now func() time.Time) *InitDataVerifier {
	v.now = now
	return v
}

// Verify checks the signature and freshness of initData and returns the embedded user.
// Every failure is an authentication error with a distinct code.
func (v *InitDataVerifier) Verify(initData string) (*TelegramUser, error) {
	if strings.TrimSpace(initData) == "" {
		return nil, models.NewAuthenticationError(models.ErrMalformedInitData, "init data is empty")
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, models.NewAuthenticationError(models.ErrMalformedInitData, "init data is not a valid query string")
	}

	providedHash := values.Get("hash")
	if providedHash == "" {
		return nil, models.NewAuthenticationError(models.ErrMissingHash, "init data is not signed")
	}
	values.Del("hash")

	expected := signDataCheckString(v.secret, DataCheckString(values))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(providedHash))) {
		return nil, models.NewAuthenticationError(models.ErrInvalidSignature, "init data signature mismatch")
	}

	authUnix, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil || authUnix <= 0 {
		return nil, models.NewAuthenticationError(models.ErrInvalidAuthDate, "auth_date is missing or invalid")
	}
	authDate := time.Unix(authUnix, 0).UTC()
	age := v.now().UTC().Sub(authDate)
	if age < -MaxClockSkew {
		return nil, models.NewAuthenticationError(models.ErrInvalidAuthDate, "auth_date is in the future")
	}
	if age > v.maxAge {
		return nil, models.NewAuthenticationError(models.ErrInitDataExpired, "init data expired")
	}

	user, err := parseTelegramUser(values.Get("user"))
	if err != nil {
		return nil, err
	}
	user.AuthDate = authDate
	return user, nil
}

func parseTelegramUser(payload string) (*TelegramUser, error) {
	if payload == "" || !gjson.Valid(payload) {
		return nil, models.NewAuthenticationError(models.ErrInvalidUserPayload, "user payload is not valid JSON")
	}
	doc := gjson.Parse(payload)
	if !doc.IsObject() {
		return nil, models.NewAuthenticationError(models.ErrInvalidUserPayload, "user payload must be an object")
	}
	id := doc.Get("id")
	if id.Type != gjson.Number || id.Int() <= 0 {
		return nil, models.NewAuthenticationError(models.ErrInvalidUserPayload, "user payload has no id")
	}
	return &TelegramUser{
		ID:        id.Int(),
		Username:  doc.Get("username").String(),
		FirstName: doc.Get("first_name").String(),
		LastName:  doc.Get("last_name").String(),
	}, nil
}

// DataCheckString builds the canonical string Telegram signs: every pair except
// hash, sorted by key, formatted key=value and joined with newlines.
func DataCheckString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		if key == "hash" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, key+"="+values.Get(key))
	}
	return strings.Join(lines, "\n")
}

// SignInitData returns values encoded as init data with a valid hash for botToken.
// It mirrors what Telegram produces and is used by tests and local tooling.
func SignInitData(botToken string, values url.Values) string {
	signed := url.Values{}
	for key, vals := range values {
		if key != "hash" && len(vals) > 0 {
			signed.Set(key, vals[0])
		}
	}
	signed.Set("hash", signDataCheckString(deriveSecret(botToken), DataCheckString(signed)))
	return signed.Encode()
}

func deriveSecret(botToken string) []byte {
	mac := hmac.New(sha256.New, []byte(webAppDataKey))
	mac.Write([]byte(botToken))
	return mac.Sum(nil)
}

func signDataCheckString(secret []byte, dataCheckString string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(dataCheckString))
	return hex.EncodeToString(mac.Sum(nil))
}
