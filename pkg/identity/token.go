// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"time"

	"golang.org/x/oauth2"
)

// Token is the identity token kept in the session after a successful login.
// Its JSON form is what the session stores and the home page prints; its BSON
// form is the user_data document.
type Token struct {
	AccessToken  string `json:"access_token" bson:"access_token"`
	TokenType    string `json:"token_type" bson:"token_type"`
	IDToken      string `json:"id_token" bson:"id_token"`
	RefreshToken string `json:"refresh_token,omitempty" bson:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty" bson:"scope,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty" bson:"expires_in,omitempty"`
	// ExpiresAt is the access token expiry in unix seconds.
	ExpiresAt int64 `json:"expires_at,omitempty" bson:"expires_at,omitempty"`

	// Userinfo holds the verified ID token claims.
	Userinfo map[string]any `json:"userinfo" bson:"userinfo"`
}

// newToken builds a Token from an oauth2 token response and verified ID token claims.
func newToken(tok *oauth2.Token, rawIDToken string, claims map[string]any) *Token {
	t := &Token{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		IDToken:      rawIDToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
		Userinfo:     claims,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		t.Scope = scope
	}
	if !tok.Expiry.IsZero() {
		t.ExpiresAt = tok.Expiry.Unix()
		if t.ExpiresIn == 0 {
			t.ExpiresIn = int64(time.Until(tok.Expiry).Round(time.Second) / time.Second)
		}
	}
	return t
}

// Subject returns the sub claim.
func (t *Token) Subject() string {
	return t.claim("sub")
}

// Name returns the display name, falling back to nickname and email.
func (t *Token) Name() string {
	for _, key := range []string{"name", "nickname", "preferred_username", "email"} {
		if v := t.claim(key); v != "" {
			return v
		}
	}
	return ""
}

// Email returns the email claim.
func (t *Token) Email() string {
	return t.claim("email")
}

// Picture returns the picture claim.
func (t *Token) Picture() string {
	return t.claim("picture")
}

func (t *Token) claim(key string) string {
	if t == nil || t.Userinfo == nil {
		return ""
	}
	v, _ := t.Userinfo[key].(string)
	return v
}
