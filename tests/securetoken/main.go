// Command securetoken is a stand-in for the Firebase secure-token issuer used
// in local and end-to-end runs. It publishes discovery and JWKS documents and
// mints RS256 ID tokens on request.
package main

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultIssuer    = "http://securetoken:5555/lifestyle-dev"
	defaultProjectID = "lifestyle-dev"
	defaultTokenTTL  = time.Hour
)

type tokenRequest struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	TTLSeconds    int    `json:"ttl_seconds"`
}

type tokenResponse struct {
	IDToken   string `json:"id_token"`
	ExpiresIn int    `json:"expires_in"`
}

type server struct {
	issuer     string
	projectID  string
	privateKey *rsa.PrivateKey
	keyID      string
	now        func() time.Time
}

func main() {
	srv, err := newServer(getEnv("SECURETOKEN_ISSUER_URL", defaultIssuer), getEnv("FIREBASE_PROJECT_ID", defaultProjectID))
	if err != nil {
		log.Fatal(err)
	}

	addr := getEnv("SECURETOKEN_ADDR", ":5555")
	server := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	log.Printf("Secure token test issuer listening on %s (issuer %s)", addr, srv.issuer)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func newServer(issuer, projectID string) (*server, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generating RSA key: %w", err)
	}
	keyID, err := randomToken(8)
	if err != nil {
		return nil, fmt.Errorf("generating key id: %w", err)
	}
	return &server{
		issuer:     strings.TrimRight(issuer, "/"),
		projectID:  projectID,
		privateKey: privateKey,
		keyID:      keyID,
		now:        time.Now,
	}, nil
}

// routes serves discovery relative to the issuer path, the way
// securetoken.google.com/<project> does.
func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", s.handleWellKnown)
	mux.HandleFunc("GET /{project}/.well-known/openid-configuration", s.handleWellKnown)
	mux.HandleFunc("GET /keys", s.handleKeys)
	mux.HandleFunc("POST /test/token", s.handleToken)
	return mux
}

func (s *server) handleWellKnown(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                s.issuer,
		"jwks_uri":                              s.baseURL() + "/keys",
		"response_types_supported":              []string{"id_token"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"RS256"},
	})
}

func (s *server) handleKeys(w http.ResponseWriter, r *http.Request) {
	n := base64.RawURLEncoding.EncodeToString(s.privateKey.N.Bytes())
	e := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(s.privateKey.PublicKey.E)).Bytes())
	writeJSON(w, http.StatusOK, map[string]any{
		"keys": []map[string]any{
			{"kty": "RSA", "use": "sig", "alg": "RS256", "kid": s.keyID, "n": n, "e": e},
		},
	})
}

func (s *server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	req.UID = strings.TrimSpace(req.UID)
	if req.UID == "" {
		http.Error(w, "uid required", http.StatusBadRequest)
		return
	}

	ttl := defaultTokenTTL
	if req.TTLSeconds > 0 {
		ttl = time.Duration(req.TTLSeconds) * time.Second
	}

	token, err := s.issueIDToken(req, ttl)
	if err != nil {
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{IDToken: token, ExpiresIn: int(ttl.Seconds())})
}

func (s *server) issueIDToken(req tokenRequest, ttl time.Duration) (string, error) {
	now := s.now()
	claims := map[string]any{
		"iss":            s.issuer,
		"aud":            s.projectID,
		"sub":            req.UID,
		"user_id":        req.UID,
		"auth_time":      now.Unix(),
		"iat":            now.Unix(),
		"exp":            now.Add(ttl).Unix(),
		"email":          strings.ToLower(strings.TrimSpace(req.Email)),
		"email_verified": req.EmailVerified,
	}
	if req.Name != "" {
		claims["name"] = req.Name
	}
	if req.Picture != "" {
		claims["picture"] = req.Picture
	}

	header := map[string]any{"alg": "RS256", "typ": "JWT", "kid": s.keyID}
	return signJWT(header, claims, s.privateKey)
}

// baseURL strips the project segment from the issuer so the key endpoint
// stays at the server root.
func (s *server) baseURL() string {
	if s.projectID != "" && strings.HasSuffix(s.issuer, "/"+s.projectID) {
		return strings.TrimSuffix(s.issuer, "/"+s.projectID)
	}
	return s.issuer
}

func signJWT(header, claims map[string]any, key *rsa.PrivateKey) (string, error) {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", err
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(claimsJSON)
	hash := sha256.Sum256([]byte(signingInput))
	signature, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, hash[:])
	if err != nil {
		return "", err
	}
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature), nil
}

func randomToken(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("invalid length")
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
