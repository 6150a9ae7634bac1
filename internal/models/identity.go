package models

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrNoLoginMethod = errors.New("identity needs a password hash or a linked provider")
)

// KnownProviders lists the OAuth providers an identity can be linked to.
var KnownProviders = []string{"facebook", "google", "github"}

// IsKnownProvider reports whether name is one of KnownProviders.
func IsKnownProvider(name string) bool {
	return slices.Contains(KnownProviders, name)
}

var validate = validator.New()

// Profile holds the fields shared by every role.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Gender    string `json:"gender"`
	Location  string `json:"location"`
	Website   string `json:"website"`
	Picture   string `json:"picture"`
}

type ApplicantProfile struct {
	Major          string   `json:"major"`
	GraduationYear int      `json:"graduationYear,omitempty"`
	Degree         string   `json:"degree"`
	School         string   `json:"school"`
	ResumeURL      string   `json:"resumeUrl"`
	Skills         []string `json:"skills"`
	Interests      []string `json:"interests"`
}

type RecruiterProfile struct {
	Organization string    `json:"organization"`
	Title        string    `json:"title"`
	Skills       []string  `json:"skills"`
	Interests    []string  `json:"interests"`
	Openings     []Opening `json:"openings"`
}

// Opening is a recruiter's back-reference to a job it posted. The job may
// have been deleted since.
type Opening struct {
	JobID   uuid.UUID `json:"jobId"`
	JobName string    `json:"jobName"`
}

// RoleProfile is the role specific payload of an Identity. At most one
// field is set and it always matches Identity.Role.
type RoleProfile struct {
	Applicant *ApplicantProfile `json:"applicant,omitempty"`
	Recruiter *RecruiterProfile `json:"recruiter,omitempty"`
}

// DefaultRoleProfile returns the empty payload for a freshly assigned role.
func DefaultRoleProfile(r Role) RoleProfile {
	switch r {
	case RoleApplicant:
		return RoleProfile{Applicant: &ApplicantProfile{Skills: []string{}, Interests: []string{}}}
	case RoleRecruiter:
		return RoleProfile{Recruiter: &RecruiterProfile{Skills: []string{}, Interests: []string{}, Openings: []Opening{}}}
	default:
		return RoleProfile{}
	}
}

// Role reports which variant the payload carries.
func (p RoleProfile) Role() Role {
	switch {
	case p.Applicant != nil:
		return RoleApplicant
	case p.Recruiter != nil:
		return RoleRecruiter
	default:
		return RoleUnset
	}
}

func (p RoleProfile) Clone() RoleProfile {
	var out RoleProfile
	if p.Applicant != nil {
		a := *p.Applicant
		a.Skills = slices.Clone(a.Skills)
		a.Interests = slices.Clone(a.Interests)
		out.Applicant = &a
	}
	if p.Recruiter != nil {
		r := *p.Recruiter
		r.Skills = slices.Clone(r.Skills)
		r.Interests = slices.Clone(r.Interests)
		r.Openings = slices.Clone(r.Openings)
		out.Recruiter = &r
	}
	return out
}

// AuthToken is an OAuth access token tagged with the provider that issued it.
type AuthToken struct {
	Kind        string `json:"kind"`
	AccessToken string `json:"accessToken"`
	TokenSecret string `json:"tokenSecret,omitempty"`
}

// Identity is the persisted user account.
type Identity struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	Email        string            `json:"email" db:"email"`
	PasswordHash string            `json:"-" db:"password_hash"` // empty for provider-only accounts
	ResetToken   string            `json:"-" db:"reset_token"`
	ResetExpires *time.Time        `json:"-" db:"reset_expires"`
	Providers    map[string]string `json:"providers" db:"providers"`
	Tokens       []AuthToken       `json:"-" db:"auth_tokens"`
	Profile      Profile           `json:"profile" db:"profile"`
	Role         Role              `json:"role" db:"role"`
	RoleProfile  RoleProfile       `json:"roleProfile" db:"role_profile"`
	CreatedAt    time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time         `json:"updatedAt" db:"updated_at"`
}

// Credentials are the login methods an identity is created with. A
// plaintext password never reaches this type, only its hash.
type Credentials struct {
	PasswordHash string
	Provider     string
	Subject      string
	Token        *AuthToken
}

func (c Credentials) usable() bool {
	return c.PasswordHash != "" || (c.Provider != "" && c.Subject != "")
}

// NewApplicant builds an applicant identity with an empty applicant profile.
func NewApplicant(email string, creds Credentials, profile Profile) (*Identity, error) {
	return newIdentity(email, RoleApplicant, creds, profile)
}

// NewRecruiter builds a recruiter identity with an empty recruiter profile.
func NewRecruiter(email string, creds Credentials, profile Profile) (*Identity, error) {
	return newIdentity(email, RoleRecruiter, creds, profile)
}

// NewUnassigned builds an identity whose role is picked later, as happens
// on a first provider login.
func NewUnassigned(email string, creds Credentials, profile Profile) (*Identity, error) {
	return newIdentity(email, RoleUnset, creds, profile)
}

func newIdentity(email string, role Role, creds Credentials, profile Profile) (*Identity, error) {
	email = NormalizeEmail(email)
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if !creds.usable() {
		return nil, ErrNoLoginMethod
	}

	identity := &Identity{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: creds.PasswordHash,
		Providers:    map[string]string{},
		Tokens:       []AuthToken{},
		Profile:      profile,
		Role:         role,
		RoleProfile:  DefaultRoleProfile(role),
	}
	if creds.Provider != "" {
		identity.Providers[creds.Provider] = creds.Subject
	}
	if creds.Token != nil {
		identity.Tokens = append(identity.Tokens, *creds.Token)
	}
	return identity, nil
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (i *Identity) HasPassword() bool {
	return i.PasswordHash != ""
}

func (i *Identity) IsLinked(provider string) bool {
	_, ok := i.Providers[provider]
	return ok
}

// LoginMethods counts the password plus every linked provider.
func (i *Identity) LoginMethods() int {
	n := len(i.Providers)
	if i.HasPassword() {
		n++
	}
	return n
}

// Usable reports whether the identity can log in at all.
func (i *Identity) Usable() bool {
	return i.LoginMethods() > 0
}

// ResetPending reports whether a reset token is redeemable at now.
func (i *Identity) ResetPending(now time.Time) bool {
	return i.ResetToken != "" && i.ResetExpires != nil && now.Before(*i.ResetExpires)
}

// DisplayName is the full name when known, the email otherwise.
func (i *Identity) DisplayName() string {
	name := strings.TrimSpace(i.Profile.FirstName + " " + i.Profile.LastName)
	if name == "" {
		return i.Email
	}
	return name
}

// Clone returns a deep copy.
func (i *Identity) Clone() *Identity {
	out := *i
	if i.ResetExpires != nil {
		t := *i.ResetExpires
		out.ResetExpires = &t
	}
	out.Providers = make(map[string]string, len(i.Providers))
	for k, v := range i.Providers {
		out.Providers[k] = v
	}
	out.Tokens = slices.Clone(i.Tokens)
	if out.Tokens == nil {
		out.Tokens = []AuthToken{}
	}
	out.RoleProfile = i.RoleProfile.Clone()
	return &out
}

// ResetWindow is a pending password reset. The zero value clears it.
type ResetWindow struct {
	Token   string
	Expires time.Time
}

func (w ResetWindow) IsZero() bool {
	return w.Token == "" && w.Expires.IsZero()
}

// Links replaces the provider map and the token list together.
type Links struct {
	Providers map[string]string
	Tokens    []AuthToken
}

// IdentityPatch lists the fields an update touches; nil fields are left alone.
type IdentityPatch struct {
	Email        *string
	PasswordHash *string
	Reset        *ResetWindow
	Links        *Links
	Profile      *Profile
	RoleProfile  *RoleProfile
}

func (p *IdentityPatch) IsEmpty() bool {
	return p.Email == nil && p.PasswordHash == nil && p.Reset == nil &&
		p.Links == nil && p.Profile == nil && p.RoleProfile == nil
}

// Apply writes the patch onto i. Stores that keep whole documents use it.
func (p *IdentityPatch) Apply(i *Identity) {
	if p.Email != nil {
		i.Email = *p.Email
	}
	if p.PasswordHash != nil {
		i.PasswordHash = *p.PasswordHash
	}
	if p.Reset != nil {
		if p.Reset.IsZero() {
			i.ResetToken = ""
			i.ResetExpires = nil
		} else {
			expires := p.Reset.Expires
			i.ResetToken = p.Reset.Token
			i.ResetExpires = &expires
		}
	}
	if p.Links != nil {
		i.Providers = make(map[string]string, len(p.Links.Providers))
		for k, v := range p.Links.Providers {
			i.Providers[k] = v
		}
		i.Tokens = slices.Clone(p.Links.Tokens)
		if i.Tokens == nil {
			i.Tokens = []AuthToken{}
		}
	}
	if p.Profile != nil {
		i.Profile = *p.Profile
	}
	if p.RoleProfile != nil {
		i.RoleProfile = p.RoleProfile.Clone()
	}
}
