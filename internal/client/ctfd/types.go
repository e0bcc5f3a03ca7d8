package ctfd

import (
	"bytes"
	"encoding/json"
)

// Default values applied to users created from tabular input.
const (
	DefaultUserType = "user"
)

// Field is a value for a custom registration field.
type Field struct {
	FieldID int         `json:"field_id" yaml:"field_id"`
	Value   interface{} `json:"value" yaml:"value"`
}

// UserFields is the payload for POST /api/v1/users.
type UserFields struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Type     string  `json:"type"`
	Verified bool    `json:"verified"`
	Hidden   bool    `json:"hidden"`
	Banned   bool    `json:"banned"`
	Fields   []Field `json:"fields"`
}

// NewUserFields builds a payload with the defaults used for bulk imports:
// a verified, visible, unbanned regular user with no custom fields.
func NewUserFields(name, email, password string) UserFields {
	return UserFields{
		Name:     name,
		Email:    email,
		Password: password,
		Type:     DefaultUserType,
		Verified: true,
		Hidden:   false,
		Banned:   false,
		Fields:   []Field{},
	}
}

// MarshalJSON always emits "fields" as an array, never null.
func (u UserFields) MarshalJSON() ([]byte, error) {
	type alias UserFields
	if u.Fields == nil {
		u.Fields = []Field{}
	}
	return json.Marshal(alias(u))
}

// User is a user record as returned by the listing and detail endpoints.
// The original JSON object is kept so output never drops server fields.
type User struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email,omitempty"`
	Type        string  `json:"type,omitempty"`
	Website     *string `json:"website,omitempty"`
	Affiliation *string `json:"affiliation,omitempty"`
	Country     *string `json:"country,omitempty"`
	OAuthID     *int    `json:"oauth_id,omitempty"`
	Verified    bool    `json:"verified"`
	Hidden      bool    `json:"hidden"`
	Banned      bool    `json:"banned"`
	Created     string  `json:"created,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the known fields and retains the raw object.
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*u = User(a)
	u.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON re-emits the object received from the server when available.
func (u User) MarshalJSON() ([]byte, error) {
	if len(u.raw) > 0 {
		return u.raw, nil
	}
	type alias User
	return json.Marshal(alias(u))
}

// Pagination is the pagination block under "meta".
type Pagination struct {
	Page    int  `json:"page"`
	Next    *int `json:"next"`
	Prev    *int `json:"prev"`
	Pages   int  `json:"pages"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
}

// Meta is the "meta" block of listing responses.
type Meta struct {
	Pagination Pagination `json:"pagination"`
}

// UsersPage is one page of GET /api/v1/users.
type UsersPage struct {
	Success bool   `json:"success"`
	Meta    Meta   `json:"meta"`
	Data    []User `json:"data"`
}

// Patch is a partial set of user fields for PATCH /api/v1/users/{id}.
type Patch map[string]interface{}

// Response is a decoded API response. Non-2xx responses are returned as-is;
// callers inspect OK to decide how to report them.
type Response struct {
	StatusCode int
	RequestID  string
	Body       json.RawMessage

	// Envelope fields, populated when the body is a JSON object.
	Success *bool
	Message string
	Errors  json.RawMessage
}

// OK reports a 2xx status with no explicit "success": false.
func (r *Response) OK() bool {
	if r.StatusCode < 200 || r.StatusCode >= 300 {
		return false
	}
	return r.Success == nil || *r.Success
}

// Decode returns the body as generic JSON values.
func (r *Response) Decode() (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Into decodes the body into v.
func (r *Response) Into(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// MarshalJSON emits the decoded body, which is what the CLI prints.
func (r *Response) MarshalJSON() ([]byte, error) {
	if len(r.Body) == 0 {
		return []byte("null"), nil
	}
	return r.Body, nil
}

type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
}

func (r *Response) parseEnvelope() {
	if !bytes.HasPrefix(bytes.TrimSpace(r.Body), []byte("{")) {
		return
	}
	var env envelope
	if err := json.Unmarshal(r.Body, &env); err != nil {
		return
	}
	r.Success = env.Success
	r.Message = env.Message
	r.Errors = env.Errors
}
