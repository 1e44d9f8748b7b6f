package main

import (
	"fmt"
	"log"

	"github.com/staynest/booking-backend/internal/utils"
)

// Prints a fresh HMAC secret for verifying identity tokens in local and
// staging environments.
func main() {
	fmt.Println("===========================================")
	fmt.Println("Identity Secret Generator for StayNest")
	fmt.Println("===========================================")
	fmt.Println()

	secret, err := utils.GenerateIdentitySecret()
	if err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}

	fmt.Println("Add this to your .env file:")
	fmt.Println()
	fmt.Printf("IDENTITY_JWT_SECRET=%s\n", secret)
	fmt.Println()
	fmt.Println("Keep this secret out of version control.")
	fmt.Println("===========================================")
}
