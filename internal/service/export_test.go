package service

// SetPasswordCompare replaces the password comparison used by SignIn.
func SetPasswordCompare(s *AuthService, fn func(hashed, plain string) error) {
	s.compare = fn
}
