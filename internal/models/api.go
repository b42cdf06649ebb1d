package models

import "time"

type ValidateTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type ValidateTokenResponse struct {
	Valid       bool      `json:"valid"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`
	AccessToken string    `json:"accessToken,omitempty"`
}

type ConnectRequest struct {
	Provider string `json:"provider" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

type ConnectResponse struct {
	Provider  string `json:"provider"`
	Connected bool   `json:"connected"`
	Email     string `json:"email,omitempty"`
}

type ScanRequest struct {
	Settings ScanSettings `json:"settings"`
}

// SendRequest sends a message immediately instead of drafting it.
type SendRequest struct {
	To        string `json:"to" binding:"required"`
	Subject   string `json:"subject" binding:"required"`
	Content   string `json:"content" binding:"required"`
	ThreadID  string `json:"threadId,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

// ProviderInfo describes one selectable email provider to the frontend.
type ProviderInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	ComingSoon  bool     `json:"comingSoon,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
