package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"simpleTwitter/auth"
	"simpleTwitter/domain"
	"simpleTwitter/errs"
)

// A principalHandlerFunc handles a request on behalf of an authorized principal.
type principalHandlerFunc func(w http.ResponseWriter, r *http.Request, principal *domain.User)

func (s *Server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/users", s.handleSignUp).Methods("POST")
	r.HandleFunc("/users/signin", s.handleSignIn).Methods("POST")
	r.HandleFunc("/admin/signin", s.handleAdminSignIn).Methods("POST")
}

// signInForm is the body of both sign-in routes.
type signInForm struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// signInResponse is returned by "POST /api/users/signin".
type signInResponse struct {
	Status    string            `json:"status"`
	AuthToken string            `json:"authToken"`
	User      domain.PublicUser `json:"user"`
}

// adminSignInResponse is returned by "POST /api/admin/signin".
type adminSignInResponse struct {
	Status    string `json:"status"`
	AuthToken string `json:"authToken"`
	Data      struct {
		User domain.PublicUser `json:"user"`
	} `json:"data"`
}

// handleSignUp handles the route "POST /api/users".
// It creates a new regular user. The new user has to sign in afterwards.
func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	// Parse the submitted account data.
	var su domain.SignUp
	if err := decodeJSON(r, &su); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// Validate the data and create the user.
	if _, err := s.us.SignUp(r.Context(), &su); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	writeJSON(w, r, map[string]string{"status": "success"})
}

// handleSignIn handles the route "POST /api/users/signin".
// It checks the submitted credentials and returns a session token. The administrator
// has to sign in through "POST /api/admin/signin" instead.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	// 1. Check the credentials.
	user, err := s.authenticateForm(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// 2. Only regular users may sign in here.
	if user.Role != domain.RoleUser {
		errs.ReturnError(w, r, errs.Errorf(errs.EAUTH, "Account or password is wrong."))
		return
	}

	// 3. Issue the token.
	token, err := s.issuer.Issue(user)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	writeJSON(w, r, &signInResponse{
		Status:    "success",
		AuthToken: token,
		User:      user.Public(),
	})
}

// handleAdminSignIn handles the route "POST /api/admin/signin".
// It checks the submitted credentials, makes sure they belong to the administrator
// and returns a session token.
func (s *Server) handleAdminSignIn(w http.ResponseWriter, r *http.Request) {
	// 1. Check the credentials.
	user, err := s.authenticateForm(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// 2. Apply the same predicate as the admin gate.
	if err := auth.AuthorizeAdmin(user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	// 3. Issue the token.
	token, err := s.issuer.Issue(user)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	resp := &adminSignInResponse{
		Status:    "success",
		AuthToken: token,
	}
	resp.Data.User = user.Public()
	writeJSON(w, r, resp)
}

// authenticateForm parses a sign-in form and checks its credentials.
func (s *Server) authenticateForm(r *http.Request) (*domain.User, error) {
	var form signInForm
	if err := decodeJSON(r, &form); err != nil {
		return nil, err
	}
	if form.Account == "" || form.Password == "" {
		return nil, errs.Errorf(errs.EINVALID, "Account and password are required.")
	}
	return s.us.Authenticate(r.Context(), form.Account, form.Password)
}

// authenticate resolves the principal of a request from its bearer token.
// A missing, invalid or expired token, or a token of a deleted user, is EUNAUTHORIZED.
func (s *Server) authenticate(r *http.Request) (*domain.User, error) {
	token, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return nil, auth.ErrUnauthorized
	}
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return nil, auth.ErrUnauthorized
	}
	user, err := s.us.ByID(r.Context(), claims.ID)
	if err != nil {
		if errs.ErrorCode(err) == errs.ENOTFOUND {
			return nil, auth.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// requireUser only lets authenticated regular users through.
func (s *Server) requireUser(next principalHandlerFunc) http.HandlerFunc {
	return s.gate(auth.AuthorizeUser, next)
}

// requireAdmin only lets the authenticated administrator through.
func (s *Server) requireAdmin(next principalHandlerFunc) http.HandlerFunc {
	return s.gate(auth.AuthorizeAdmin, next)
}

// gate authenticates a request, applies authorize to its principal and hands the
// principal on to next.
func (s *Server) gate(authorize func(*domain.User) error, next principalHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := s.authenticate(r)
		if err == nil {
			err = authorize(principal)
		}
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		setPrincipal(w, principal)
		next(w, r, principal)
	}
}
