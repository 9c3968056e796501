// Package wallet builds signed "Add to Google Wallet" links for receipts,
// shopping lists and monthly insights.
package wallet

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/raseed-labs/raseed-backend/logger"
	"go.uber.org/zap"
)

const (
	SaveURLBase = "https://pay.google.com/gp/v/save/"

	audience       = "google"
	tokenType      = "savetowallet"
	defaultLogoURI = "https://storage.googleapis.com/wallet-lab-tools-codelab-artifacts-public/pass_google_logo.jpg"
)

// ServiceAccount holds the fields of a Google service-account key file that
// are needed to sign save links.
type ServiceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// LoadServiceAccount reads and parses a service-account key file.
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return ParseServiceAccount(data)
}

func ParseServiceAccount(data []byte) (*ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("decode service account: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return nil, fmt.Errorf("service account is missing client_email or private_key")
	}
	return &sa, nil
}

// Issuer signs save links on behalf of one Wallet issuer account.
type Issuer struct {
	issuerID string
	email    string
	key      *rsa.PrivateKey
	origins  []string
	logoURI  string
	now      func() time.Time
	newID    func() string
	log      *zap.SugaredLogger
}

type Option func(*Issuer)

// WithOrigins sets the web origins allowed to show the save button.
func WithOrigins(origins ...string) Option {
	return func(i *Issuer) {
		i.origins = origins
	}
}

func WithLogoURI(uri string) Option {
	return func(i *Issuer) {
		if uri != "" {
			i.logoURI = uri
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// NewIssuer parses the service account's RSA key and returns an issuer for issuerID.
func NewIssuer(issuerID string, sa *ServiceAccount, opts ...Option) (*Issuer, error) {
	if issuerID == "" {
		return nil, fmt.Errorf("wallet issuer id is required")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parse service account private key: %w", err)
	}

	i := &Issuer{
		issuerID: issuerID,
		email:    sa.ClientEmail,
		key:      key,
		origins:  []string{},
		logoURI:  defaultLogoURI,
		now:      time.Now,
		newID:    uuid.NewString,
		log:      logger.GetLogger().Named("wallet"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func (i *Issuer) objectID() string {
	return fmt.Sprintf("%s.%s", i.issuerID, i.newID())
}

func (i *Issuer) classID(suffix string) string {
	return fmt.Sprintf("%s.%s", i.issuerID, suffix)
}

// saveLink signs the classes and objects into a savetowallet JWT.
func (i *Issuer) saveLink(classes []GenericClass, objects []GenericObject) (string, error) {
	claims := jwt.MapClaims{
		"iss":     i.email,
		"aud":     audience,
		"typ":     tokenType,
		"origins": i.origins,
		"iat":     i.now().Unix(),
		"payload": savePayload{GenericClasses: classes, GenericObjects: objects},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign wallet link: %w", err)
	}
	return SaveURLBase + token, nil
}
