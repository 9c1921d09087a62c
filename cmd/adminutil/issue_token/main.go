package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/sudo-init-do/talentbook/internal/auth"
	"github.com/sudo-init-do/talentbook/internal/config"
)

// issue_token signs a bearer token with JWT_SECRET for operators and local
// testing.
// Usage:
//
//	go run ./cmd/adminutil/issue_token -user ops-1 -email ops@example.com -role admin
//	go run ./cmd/adminutil/issue_token -user u-42 -role vendor -vendor <vendor uuid> -ttl 72h
func main() {
	userID := flag.String("user", "", "user id placed in the user_id claim")
	email := flag.String("email", "", "optional email claim")
	role := flag.String("role", string(auth.RoleUser), "role claim: user, vendor or admin")
	vendorID := flag.String("vendor", "", "vendor id for vendor tokens")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" {
		log.Fatalf("usage: go run ./cmd/adminutil/issue_token -user <id> [-email e] [-role r] [-vendor id] [-ttl 24h]")
	}
	r := auth.Role(*role)
	switch r {
	case auth.RoleUser, auth.RoleAdmin:
	case auth.RoleVendor:
		if *vendorID == "" {
			log.Fatalf("vendor tokens need -vendor")
		}
	default:
		log.Fatalf("unknown role %q", *role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	tok, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.AdminEmailList()).
		Issue(auth.Actor{UserID: *userID, Email: *email, Role: r, VendorID: *vendorID}, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Println(tok)
}
