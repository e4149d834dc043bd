package entity

// Identity is the authenticated user as reported by the identity
// provider. A nil *Identity means anonymous.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

// Session pairs an access token with the identity it belongs to.
type Session struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	Identity     *Identity `json:"identity,omitempty"`
}

// ProfileUpdate carries the editable profile fields. Nil pointers mean
// "leave unchanged"; a pointer to the empty string clears the field.
type ProfileUpdate struct {
	DisplayName *string `json:"displayName,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}
