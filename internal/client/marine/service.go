package marine

import "context"

type AuthService interface {
	Login(ctx context.Context, creds Credentials) error
	Logout(ctx context.Context) error
	Register(ctx context.Context, reg Registration) (*Profile, error)
	Me(ctx context.Context) (*Profile, error)
	// CheckSession asks the API who owns cookieHeader. It never refreshes.
	CheckSession(ctx context.Context, cookieHeader string) (*Profile, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, confirm PasswordResetConfirm) error
	VerifyEmail(ctx context.Context, token string) error
}

type ObservationService interface {
	List(ctx context.Context, params *ListParams) (*Page[Observation], error)
	ListAll(ctx context.Context) ([]Observation, error)
	Create(ctx context.Context, in ObservationInput) (*Observation, error)
	Update(ctx context.Context, id int64, patch ObservationPatch) (*Observation, error)
	Delete(ctx context.Context, id int64) error
}

type MapService interface {
	Observations(ctx context.Context, q *MapQuery) (*FeatureCollection, error)
}
