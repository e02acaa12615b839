package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/franciscosanchezn/gin-bistro-api/internal/config"
	"github.com/franciscosanchezn/gin-bistro-api/internal/database"
	"github.com/franciscosanchezn/gin-bistro-api/internal/models"
	"github.com/franciscosanchezn/gin-bistro-api/internal/services"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	role := flag.String("role", "admin", "Owner role (admin or user)")
	phone := flag.String("phone", "", "Owner phone number (defaults per role)")
	password := flag.String("password", "dev-password", "Owner password when the account is created")
	flag.Parse()

	if *role != "admin" && *role != "user" {
		log.Fatalf("Unsupported role %q", *role)
	}

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	db, err := database.InitDatabase(conf.DatabaseConfig())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Determine client credentials based on role
	clientID, clientSecret := "dev-client", "dev-secret-123"
	ownerPhone := "600000001"
	if *role == "user" {
		clientID, clientSecret = "user-client", "user-secret-123"
		ownerPhone = "600000002"
	}
	if *phone != "" {
		ownerPhone = *phone
	}

	clientService := services.NewClientService(db)
	if existing, err := clientService.GetClientByID(clientID); err == nil {
		fmt.Printf("Development client already exists for role '%s'!\n", *role)
		fmt.Printf("Client ID: %s\n", existing.ID)
		fmt.Printf("Client Secret: %s\n", clientSecret)
		return
	}

	owner, err := ownerForRole(db, services.NewUserService(db), ownerPhone, *password, *role)
	if err != nil {
		log.Fatal("Failed to prepare client owner:", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash secret:", err)
	}

	client := models.OAuthClient{
		ID:         clientID,
		Secret:     string(hash),
		Name:       fmt.Sprintf("Development %s Client", *role),
		Domain:     "http://localhost",
		UserID:     owner.ID,
		Scopes:     "orders:read orders:write",
		GrantTypes: "client_credentials",
	}
	if err := clientService.CreateClient(&client); err != nil {
		log.Fatal("Failed to create client:", err)
	}

	fmt.Printf("Development OAuth client created for role '%s'!\n", *role)
	fmt.Printf("Client ID: %s\n", clientID)
	fmt.Printf("Client Secret: %s\n", clientSecret)
	fmt.Printf("Owner: %s (ID: %d)\n", owner.Phone, owner.ID)
	fmt.Println("\nUse these credentials for testing:")
	fmt.Printf("curl -X POST http://localhost:%d/oauth/token \\\n", conf.Port)
	fmt.Printf("  -d 'grant_type=client_credentials' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", clientID)
	fmt.Printf("  -d 'client_secret=%s'\n", clientSecret)
}

// ownerForRole finds the account by phone or registers it, then makes sure it carries the role
func ownerForRole(db *gorm.DB, users services.UserService, phone, password, role string) (*models.User, error) {
	user, err := users.GetUserByPhone(phone)
	switch {
	case errors.Is(err, services.ErrNotFound):
		user = &models.User{Phone: phone, Password: password, FirstName: "Development", LastName: role}
		if err := user.HashPassword(); err != nil {
			return nil, err
		}
		if err := users.CreateUser(user); err != nil {
			return nil, err
		}
		fmt.Printf("Created new user: %s (ID: %d)\n", user.Phone, user.ID)
	case err != nil:
		return nil, err
	default:
		fmt.Printf("Found existing user: %s (ID: %d, Role: %s)\n", user.Phone, user.ID, user.Role)
	}

	if user.Role != role {
		if err := db.Model(user).Update("role", role).Error; err != nil {
			return nil, err
		}
		user.Role = role
	}
	return user, nil
}
