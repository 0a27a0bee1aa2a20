package auth

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// Offline credentials issued when no auth base URL is configured. Addresses
// under the admin@ local part receive the back-office role.
func fakeCredentials(email string) Credentials {
	role := "USER"
	if strings.HasPrefix(strings.ToLower(email), "admin@") {
		role = "ADMIN"
	}
	name := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		name = email[:i]
	}
	return Credentials{
		Token: "tok_" + ulid.Make().String(),
		User: User{
			ID:    ulid.Make().String(),
			Name:  name,
			Email: email,
			Role:  role,
		},
	}
}
