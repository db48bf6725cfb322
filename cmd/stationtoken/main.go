// Command stationtoken mints the bearer token a scanner kiosk sends with
// every tap. The token carries the Guard role and the station id.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cmlabs-hris/rfid-attendance-go/internal/config"
	"github.com/cmlabs-hris/rfid-attendance-go/internal/pkg/jwt"
)

func main() {
	stationID := flag.String("station", "", "station identifier, e.g. main-gate")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "token lifetime")
	secret := flag.String("secret", "", "signing secret (defaults to JWT_SECRET_KEY)")
	flag.Parse()

	if *stationID == "" {
		fmt.Fprintln(os.Stderr, "-station is required")
		flag.Usage()
		os.Exit(2)
	}

	key := *secret
	if key == "" {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error loading config:", err)
			os.Exit(1)
		}
		key = cfg.JWT.Secret
	}

	token, expiresAt, err := jwt.NewJWTService(key, "1h").GenerateStationToken(*stationID, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error generating token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "station %s, expires %s\n", *stationID, time.Unix(expiresAt, 0).Format(time.RFC3339))
}
