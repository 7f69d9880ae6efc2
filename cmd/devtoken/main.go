// Command devtoken mints an access token for local testing of the checkout API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/angelmondragon/storefront-checkout/pkg/auth"
	"github.com/angelmondragon/storefront-checkout/pkg/config"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func main() {
	userID := flag.String("user", "u123", "member id placed in the token")
	storeID := flag.Int64("store", 0, "optional store id claim")
	flag.Parse()

	_ = godotenv.Load()

	var cfg config.JWTConfig
	if err := envconfig.Process(config.EnvPrefix, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "load jwt config: %v\n", err)
		os.Exit(1)
	}

	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
		UserID:  *userID,
		StoreID: *storeID,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
