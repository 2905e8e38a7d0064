package services

import (
	"os"

	"github.com/joho/godotenv"
)

// SecretResolver looks up credentials from a deployment-provided secrets
// file first, then from process environment variables. The secrets file is
// a dotenv-format file mounted by the deployment (for local runs it simply
// does not exist and everything falls through to the environment).
type SecretResolver struct {
	secrets map[string]string
}

// NewSecretResolver parses the secrets file at path. A missing file is not
// an error; lookups then rely on the environment alone.
func NewSecretResolver(path string) (*SecretResolver, error) {
	secrets, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &SecretResolver{secrets: map[string]string{}}, nil
		}
		return nil, err
	}
	return &SecretResolver{secrets: secrets}, nil
}

// Get returns the value for key, preferring the secrets file over the
// environment. Returns a *MissingSecretError when neither source has it.
func (r *SecretResolver) Get(key string) (string, error) {
	if v, ok := r.secrets[key]; ok && v != "" {
		return v, nil
	}
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, nil
	}
	return "", &MissingSecretError{Key: key}
}

// GetOptional is Get for credentials the application can start without; it
// returns an empty string instead of an error when the key is absent.
func (r *SecretResolver) GetOptional(key string) string {
	v, err := r.Get(key)
	if err != nil {
		return ""
	}
	return v
}
