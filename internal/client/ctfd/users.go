package ctfd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/otherjamesbrown/ctfd-admin/internal/client"
)

// CreateUser creates a user. When notify is true CTFd emails the new user
// their credentials.
func (s *Session) CreateUser(ctx context.Context, fields UserFields, notify bool) (*Response, error) {
	query := url.Values{}
	query.Set("notify", strconv.FormatBool(notify))
	return s.doJSON(ctx, "create user", http.MethodPost, "users", query, fields)
}

// GetUser fetches a single user.
func (s *Session) GetUser(ctx context.Context, userID string) (*Response, error) {
	return s.doJSON(ctx, "get user", http.MethodGet, userPath(userID), nil, nil)
}

// UpdateUser applies a partial update to a user.
func (s *Session) UpdateUser(ctx context.Context, userID string, patch Patch) (*Response, error) {
	if patch == nil {
		patch = Patch{}
	}
	return s.doJSON(ctx, "update user", http.MethodPatch, userPath(userID), nil, patch)
}

// DeleteUser deletes a user. The body is an empty JSON string so the request
// carries a JSON content type; CTFd rejects the call without one.
func (s *Session) DeleteUser(ctx context.Context, userID string) (*Response, error) {
	return s.doJSON(ctx, "delete user", http.MethodDelete, userPath(userID), nil, "")
}

// ListUsersPage fetches one page of the user listing. Unlike the mutating
// calls, a page that is not a successful listing is a *client.TransportError
// because nothing downstream can use it.
func (s *Session) ListUsersPage(ctx context.Context, page int) (*UsersPage, error) {
	op := fmt.Sprintf("list users page %d", page)
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))

	resp, err := s.doJSON(ctx, op, http.MethodGet, "users", query, nil)
	if err != nil {
		return nil, err
	}

	endpoint := s.endpoint("users", query)
	if !resp.OK() {
		return nil, &client.TransportError{
			Op:  op,
			URL: endpoint,
			Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(resp.Body, 256)),
		}
	}

	var result UsersPage
	if err := resp.Into(&result); err != nil {
		return nil, &client.TransportError{Op: op, URL: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &result, nil
}

// ListAllUsers walks the user listing from page 1 to the page count reported
// by page 1 and returns every user in page order. Any failed page discards the
// users collected so far.
func (s *Session) ListAllUsers(ctx context.Context) ([]User, error) {
	first, err := s.ListUsersPage(ctx, 1)
	if err != nil {
		return nil, err
	}

	users := append([]User(nil), first.Data...)
	for page := 2; page <= first.Meta.Pagination.Pages; page++ {
		next, err := s.ListUsersPage(ctx, page)
		if err != nil {
			return nil, err
		}
		users = append(users, next.Data...)
	}

	s.logger.Debug("listed users",
		zap.Int("pages", first.Meta.Pagination.Pages),
		zap.Int("count", len(users)),
	)
	return users, nil
}

func userPath(userID string) string {
	return "users/" + url.PathEscape(userID)
}
