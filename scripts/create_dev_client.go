package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"time"

	"github.com/franciscosanchezn/gin-loyalty-api/internal/auth"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/config"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/database"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/models"
	"github.com/franciscosanchezn/gin-loyalty-api/internal/services"
	"github.com/joho/godotenv"
)

// Creates a Telegram user with the requested role, an OAuth2 client owned by
// it and a freshly signed init data string for calling the API locally.
func main() {
	role := flag.String("role", "admin", "User role (admin or customer)")
	telegramID := flag.Int64("telegram-id", 1, "Telegram user id of the development user")
	username := flag.String("username", "dev", "Telegram username of the development user")
	flag.Parse()

	if !models.Role(*role).Valid() {
		log.Fatalf("Unknown role %q (admin or customer)", *role)
	}

	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.InitDatabase(cfg.Database())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	ctx := context.Background()
	users := services.NewUserService(db)
	clients := services.NewClientService(db)

	user, err := users.ResolveTelegramUser(ctx, &auth.TelegramUser{ID: *telegramID, Username: *username})
	if err != nil {
		log.Fatal("Failed to create user:", err)
	}
	if err := users.SetRole(ctx, user.ID, models.Role(*role)); err != nil {
		log.Fatal("Failed to set role:", err)
	}
	fmt.Printf("User ID: %d (telegram %d, role %s)\n", user.ID, user.TelegramID, *role)

	existing, err := clients.GetClientsByUserID(ctx, user.ID)
	if err != nil {
		log.Fatal("Failed to list clients:", err)
	}
	if len(existing) > 0 {
		fmt.Printf("Development client already exists: %s (secret was shown when it was created)\n", existing[0].ID)
	} else {
		client, secret, err := clients.RegisterClient(ctx, user.ID, services.ClientRegistration{
			Name:   fmt.Sprintf("Development %s client", *role),
			Domain: "http://localhost",
			Scopes: "orders:read export backup",
		})
		if err != nil {
			log.Fatal("Failed to create client:", err)
		}
		fmt.Printf("✓ Development OAuth client created for role '%s'!\n", *role)
		fmt.Printf("Client ID: %s\n", client.ID)
		fmt.Printf("Client Secret: %s\n", secret)
		fmt.Println("\nExchange the credentials for a token:")
		fmt.Printf("curl -X POST http://%s:%d/oauth/token \\\n", cfg.Host, cfg.Port)
		fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
		fmt.Printf("  -d 'client_id=%s' \\\n", client.ID)
		fmt.Printf("  -d 'client_secret=%s'\n", secret)
	}

	values := url.Values{}
	values.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	values.Set("user", fmt.Sprintf(`{"id":%d,"username":%q}`, *telegramID, *username))
	fmt.Println("\nInit data valid for the next", cfg.InitDataMaxAge, "(send as 'Authorization: tma <init data>'):")
	fmt.Println(auth.SignInitData(cfg.TelegramBotToken, values))
}
