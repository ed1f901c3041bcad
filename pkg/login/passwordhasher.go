package login

// PasswordHasher defines the credential policy protecting stored
// passwords: a slow, salted one-way hash with deterministic verification.
type PasswordHasher interface {
	// Hash hashes a raw password. The output is opaque and never usable
	// as plaintext.
	Hash(password string) (string, error)

	// Verify checks if the provided password matches the stored hash.
	// Malformed hash input is not an error; Verify returns false.
	Verify(password, hashedPassword string) (bool, error)
}
