// Package dating holds the wingman domain: users, chat windows, stored
// responses, request validation, prompt construction and the parsing of
// model output into reply options.
package dating

import "time"

// User is a registered wingman user. The password hash never leaves the
// storage layer.
type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Sex         string    `json:"sex"`
	Age         int       `json:"age"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Registration is the body of POST /api/create_user/.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Sex      string `json:"sex"`
	Age      int    `json:"age"`
	Password string `json:"password"`
}

// Credentials is the body of POST /api/login_user/.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the body of POST /api/update_user/. An empty Password
// keeps the current one.
type ProfileUpdate struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Sex      string `json:"sex"`
	Age      int    `json:"age"`
	Password string `json:"password,omitempty"`
}

// ChatWindow groups the responses of one conversation.
type ChatWindow struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Mode      Mode      `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChatWindow is the body of POST /api/create_chat_window/.
type NewChatWindow struct {
	UserID int64  `json:"user_id"`
	Title  string `json:"title"`
	Mode   Mode   `json:"mode"`
}

// Response is a stored prompt and the text generated for it.
type Response struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	ChatWindowID string    `json:"chat_window_id,omitempty"`
	Prompt       string    `json:"prompt"`
	Response     string    `json:"response"`
	CreatedAt    time.Time `json:"created_at"`
}

// GenerateRequest is the body of POST /api/generate/.
type GenerateRequest struct {
	Prompt       string `json:"prompt"`
	UserID       int64  `json:"user_id"`
	ChatWindowID string `json:"chat_window_id,omitempty"`
	Mode         Mode   `json:"mode,omitempty"`
	Stream       bool   `json:"stream"`
}

// GenerateResponse is the non-streaming answer of POST /api/generate/.
type GenerateResponse struct {
	Response string `json:"response"`
}

// BioBasics are the facts a generated profile description is built from.
type BioBasics struct {
	Age        int    `json:"age"`
	Occupation string `json:"occupation"`
	Interests  string `json:"interests,omitempty"`
}

// BioOptions steer the style of a generated profile description.
type BioOptions struct {
	Tone   Tone   `json:"tone"`
	Length Length `json:"length"`
	Focus  Focus  `json:"focus"`
	Humor  Humor  `json:"humor"`
}

// BioRequest is the body of POST /api/generate_tinder_description/.
type BioRequest struct {
	UserID  int64      `json:"user_id"`
	Basics  BioBasics  `json:"user_basics"`
	Options BioOptions `json:"options"`
}

// BioRefineRequest is the body of POST /api/update_tinder_description/.
type BioRefineRequest struct {
	UserID      int64      `json:"user_id"`
	Description string     `json:"description"`
	Adjustments string     `json:"adjustments,omitempty"`
	Options     BioOptions `json:"options"`
}

// BioResult is the answer of both description endpoints.
type BioResult struct {
	Description string `json:"description"`
}

// ReplyRequest is the body of POST /api/tinder_replies/.
type ReplyRequest struct {
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	Intention Intention `json:"intention"`
	Style     Style     `json:"style"`
}

// LoveRequest is the body of POST /api/love_calculator/.
type LoveRequest struct {
	Name1 string `json:"name1"`
	Name2 string `json:"name2"`
}

// LoveResult is the answer of POST /api/love_calculator/.
type LoveResult struct {
	LoveScore int    `json:"love_score"`
	Message   string `json:"message"`
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}
