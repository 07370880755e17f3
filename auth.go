package twitchauth

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Auth is the canonical authentication result produced by a successful
// callback. It is the only value that outlives the callback request; the
// token and profile it was built from are not retained anywhere else.
type Auth struct {
	// UID is the user identifier read from the configured profile field.
	UID string

	Info        Info
	Credentials Credentials
	Extra       Extra
}

// Info holds the common profile fields. Fields the provider did not return
// are left at their zero values.
type Info struct {
	Name        string
	Email       string
	Description string            // profile "bio"
	Image       string            // profile "logo"
	URLs        map[string]string // profile "self" under the "self" key
}

// Credentials holds the OAuth2 credentials granted by the provider.
type Credentials struct {
	Token        string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
	Expires      bool // true iff the provider reported an expiry
	Scopes       []string
}

// Extra carries the raw provider data alongside provider-specific flags.
type Extra struct {
	RawInfo   RawInfo
	Partnered bool // Twitch partnership flag from the profile
}

// RawInfo is the unmapped token and profile exactly as the provider
// returned them.
type RawInfo struct {
	Token *oauth2.Token
	User  Profile
}

// newAuth maps a token and profile into the canonical result. Only called
// once both network operations have succeeded.
func newAuth(token *oauth2.Token, profile Profile, uidField string) *Auth {
	partnered, _ := profile["partnered"].(bool)

	auth := &Auth{
		UID: profileString(profile, uidField),
		Info: Info{
			Name:        profileString(profile, "name"),
			Email:       profileString(profile, "email"),
			Description: profileString(profile, "bio"),
			Image:       profileString(profile, "logo"),
		},
		Credentials: newCredentials(token),
		Extra: Extra{
			RawInfo:   RawInfo{Token: token, User: profile},
			Partnered: partnered,
		},
	}

	if self := profileString(profile, "self"); self != "" {
		auth.Info.URLs = map[string]string{"self": self}
	}

	return auth
}

// newCredentials maps an oauth2 token into the credentials record.
// The granted scopes are read from the token response's extra parameters.
func newCredentials(token *oauth2.Token) Credentials {
	return Credentials{
		Token:        token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.Type(),
		ExpiresAt:    token.Expiry,
		Expires:      !token.Expiry.IsZero(),
		Scopes:       tokenScopes(token),
	}
}

// tokenScopes extracts the granted scope list from the token extras.
// Twitch returns a JSON array; other deployments return a delimited string.
func tokenScopes(token *oauth2.Token) []string {
	switch v := token.Extra("scope").(type) {
	case string:
		return splitScopes(v)
	case []any:
		scopes := make([]string, 0, len(v))
		for _, s := range v {
			if str, ok := s.(string); ok && str != "" {
				scopes = append(scopes, str)
			}
		}
		if len(scopes) == 0 {
			return nil
		}
		return scopes
	case []string:
		return v
	}
	return nil
}

// splitScopes splits a scope string on spaces and commas, dropping empties.
func splitScopes(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ','
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// profileString reads a profile field as a string. Numeric values are
// formatted without an exponent so numeric user IDs survive the round-trip
// through JSON.
func profileString(p Profile, key string) string {
	switch v := p[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}
