package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-athlete-backend/internal/domain"
	"go-athlete-backend/pkg/apperror"
	"go-athlete-backend/pkg/logger"
)

// Adapter wraps a GoTrue-style identity provider (Supabase Auth compatible).
// Every provider error is pattern-matched into the apperror taxonomy here;
// callers never see a raw provider response.
type Adapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
	bus     domain.EventBus
}

// New builds an adapter. The request timeout bounds every provider call.
func New(baseURL, apiKey string, timeout time.Duration, bus domain.EventBus) *Adapter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		bus:     bus,
	}
}

type providerError struct {
	status int
	msg    string
}

// do executes a provider request and decodes the response body into out.
// Provider-level failures come back as *providerError for translation by the
// calling operation.
func (a *Adapter) do(ctx context.Context, method, path, token string, body interface{}, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return apperror.Internal(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, &buf)
	if err != nil {
		return apperror.Internal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", a.apiKey)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return apperror.NetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)

		msg := ""
		if m, ok := errResp["msg"].(string); ok {
			msg = m
		} else if m, ok := errResp["error_description"].(string); ok {
			msg = m
		} else if m, ok := errResp["message"].(string); ok {
			msg = m
		}
		return &providerError{status: resp.StatusCode, msg: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperror.Internal(fmt.Errorf("decode provider response: %w", err))
		}
	}
	return nil
}

func (e *providerError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.status, e.msg)
}

type authResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SignUp registers a new account. Fails with confirmation_required when the
// provider demands an out-of-band confirmation step before the account is
// usable, and user_already_exists for a duplicate email.
func (a *Adapter) SignUp(ctx context.Context, email, password, displayName string) (*domain.UserIdentity, error) {
	reqBody := map[string]interface{}{
		"email":    email,
		"password": password,
		"data": map[string]interface{}{
			"display_name": displayName,
		},
	}

	var resp authResponse
	if err := a.do(ctx, http.MethodPost, "/auth/v1/signup", "", reqBody, &resp); err != nil {
		var provErr *providerError
		if !asProviderError(err, &provErr) {
			return nil, err
		}
		if provErr.status == http.StatusUnprocessableEntity || containsFold(provErr.msg, "already registered") || containsFold(provErr.msg, "already exists") {
			return nil, apperror.Conflict("An account with this email already exists")
		}
		return nil, apperror.SignUpFailed(orDefault(provErr.msg, "Sign up failed"), provErr)
	}

	id := resp.ID
	if id == "" {
		id = resp.User.ID
	}

	// No access token means the provider is holding the account until the
	// user confirms out of band.
	if resp.AccessToken == "" {
		return nil, apperror.ConfirmationRequired("Please confirm your email to finish signing up")
	}

	return &domain.UserIdentity{
		UserID:      id,
		Email:       email,
		AccessToken: resp.AccessToken,
		Confirmed:   true,
	}, nil
}

// ConfirmSignUp redeems an emailed confirmation code.
func (a *Adapter) ConfirmSignUp(ctx context.Context, email, code string) (bool, error) {
	reqBody := map[string]interface{}{
		"type":  "signup",
		"email": email,
		"token": code,
	}

	if err := a.do(ctx, http.MethodPost, "/auth/v1/verify", "", reqBody, nil); err != nil {
		var provErr *providerError
		if !asProviderError(err, &provErr) {
			return false, err
		}
		return false, apperror.ConfirmationFailed(orDefault(provErr.msg, "Invalid or expired confirmation code"))
	}
	return true, nil
}

// SignIn authenticates with email and password.
func (a *Adapter) SignIn(ctx context.Context, email, password string) (*domain.UserIdentity, error) {
	reqBody := map[string]interface{}{
		"email":    email,
		"password": password,
	}

	var resp authResponse
	if err := a.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", reqBody, &resp); err != nil {
		var provErr *providerError
		if !asProviderError(err, &provErr) {
			return nil, err
		}
		if containsFold(provErr.msg, "not confirmed") {
			return nil, apperror.ConfirmationRequired("Account not confirmed. Please check your email.")
		}
		if provErr.status == http.StatusBadRequest || provErr.status == http.StatusUnauthorized {
			return nil, apperror.New(http.StatusUnauthorized, apperror.KindAuthenticationFailed, "Invalid email or password", provErr)
		}
		return nil, apperror.SignInFailed(orDefault(provErr.msg, "Sign in failed"), provErr)
	}

	ident := &domain.UserIdentity{
		UserID:      resp.User.ID,
		Email:       resp.User.Email,
		AccessToken: resp.AccessToken,
		Confirmed:   true,
	}

	a.publish(domain.EventSignedIn, ident.UserID)
	return ident, nil
}

// CurrentSession inspects the provider session. It never fails: any internal
// error reports a definite signed-out state.
func (a *Adapter) CurrentSession(ctx context.Context, accessToken string) domain.SessionInfo {
	if accessToken == "" {
		return domain.SessionInfo{}
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := a.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &user); err != nil {
		logger.Log.Debug("current session check failed, treating as signed out", "error", err)
		return domain.SessionInfo{}
	}
	if user.ID == "" {
		return domain.SessionInfo{}
	}
	return domain.SessionInfo{IsSignedIn: true, UserID: user.ID}
}

// FetchUserAttributes returns the provider's attribute set for the session user.
func (a *Adapter) FetchUserAttributes(ctx context.Context, accessToken string) (map[string]string, error) {
	var user struct {
		ID           string                 `json:"id"`
		Email        string                 `json:"email"`
		Phone        string                 `json:"phone"`
		UserMetadata map[string]interface{} `json:"user_metadata"`
	}
	if err := a.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &user); err != nil {
		var provErr *providerError
		if !asProviderError(err, &provErr) {
			return nil, err
		}
		if provErr.status == http.StatusUnauthorized {
			return nil, apperror.SessionExpired()
		}
		return nil, apperror.New(http.StatusBadGateway, apperror.KindUnknown, "Failed to fetch user attributes", provErr)
	}

	attrs := map[string]string{
		"sub":   user.ID,
		"email": user.Email,
	}
	if user.Phone != "" {
		attrs["phone_number"] = user.Phone
	}
	for k, v := range user.UserMetadata {
		if s, ok := v.(string); ok {
			attrs[k] = s
		}
	}
	return attrs, nil
}

// UpdateUserAttributes pushes attribute changes to the provider and returns
// the keys still pending out-of-band confirmation (email and phone changes
// require a confirmation round trip).
func (a *Adapter) UpdateUserAttributes(ctx context.Context, accessToken string, attrs map[string]string) ([]string, error) {
	reqBody := map[string]interface{}{}
	metadata := map[string]interface{}{}
	var pending []string

	for k, v := range attrs {
		switch k {
		case "email":
			reqBody["email"] = v
			pending = append(pending, "email")
		case "phone_number":
			reqBody["phone"] = v
			pending = append(pending, "phone_number")
		default:
			metadata[k] = v
		}
	}
	if len(metadata) > 0 {
		reqBody["data"] = metadata
	}

	if err := a.do(ctx, http.MethodPut, "/auth/v1/user", accessToken, reqBody, nil); err != nil {
		var provErr *providerError
		if !asProviderError(err, &provErr) {
			return nil, err
		}
		if provErr.status == http.StatusUnauthorized {
			return nil, apperror.SessionExpired()
		}
		return nil, apperror.New(http.StatusBadGateway, apperror.KindUnknown, "Failed to update user attributes", provErr)
	}
	return pending, nil
}

// SignOut revokes the provider session. Global scope revokes every device.
// The outcome distinguishes complete, partial (sub-errors reported but not
// fatal) and failed.
func (a *Adapter) SignOut(ctx context.Context, accessToken string, global bool) domain.SignOutResult {
	path := "/auth/v1/logout"
	if global {
		path += "?scope=global"
	}

	err := a.do(ctx, http.MethodPost, path, accessToken, nil, nil)
	if err == nil {
		return domain.SignOutResult{Status: domain.SignOutComplete}
	}

	var provErr *providerError
	if asProviderError(err, &provErr) && provErr.status == http.StatusUnauthorized {
		// Token already invalid: the session is gone, which is what we wanted.
		return domain.SignOutResult{Status: domain.SignOutPartial, SubErrors: []error{provErr}}
	}
	return domain.SignOutResult{Status: domain.SignOutFailed, SubErrors: []error{err}}
}

func (a *Adapter) publish(eventType domain.AuthEventType, userID string) {
	if a.bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.bus.Publish(ctx, domain.AuthEvent{
		Type:       eventType,
		UserID:     userID,
		OccurredAt: time.Now(),
	}); err != nil {
		logger.Log.Warn("failed to publish auth event", "type", eventType, "error", err)
	}
}

func asProviderError(err error, target **providerError) bool {
	pe, ok := err.(*providerError)
	if ok {
		*target = pe
	}
	return ok
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
