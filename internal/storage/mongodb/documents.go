package mongodb

import (
	"time"

	"job-board-api/internal/models"

	"github.com/google/uuid"
)

// Documents key everything by the UUID string so ids stay readable in the
// shell and identical to the postgres store.

type openingDocument struct {
	JobID   string `bson:"job_id"`
	JobName string `bson:"job_name"`
}

type applicantProfileDocument struct {
	Major          string   `bson:"major"`
	GraduationYear int      `bson:"graduation_year,omitempty"`
	Degree         string   `bson:"degree"`
	School         string   `bson:"school"`
	ResumeURL      string   `bson:"resume_url"`
	Skills         []string `bson:"skills"`
	Interests      []string `bson:"interests"`
}

type recruiterProfileDocument struct {
	Organization string            `bson:"organization"`
	Title        string            `bson:"title"`
	Skills       []string          `bson:"skills"`
	Interests    []string          `bson:"interests"`
	Openings     []openingDocument `bson:"openings"`
}

type profileDocument struct {
	FirstName string `bson:"first_name"`
	LastName  string `bson:"last_name"`
	Gender    string `bson:"gender"`
	Location  string `bson:"location"`
	Website   string `bson:"website"`
	Picture   string `bson:"picture"`
}

type authTokenDocument struct {
	Kind        string `bson:"kind"`
	AccessToken string `bson:"access_token"`
	TokenSecret string `bson:"token_secret,omitempty"`
}

type identityDocument struct {
	ID           string                    `bson:"_id"`
	Email        string                    `bson:"email"`
	PasswordHash string                    `bson:"password_hash"`
	ResetToken   string                    `bson:"reset_token,omitempty"`
	ResetExpires *time.Time                `bson:"reset_expires,omitempty"`
	Providers    map[string]string         `bson:"providers"`
	Tokens       []authTokenDocument       `bson:"tokens"`
	Profile      profileDocument           `bson:"profile"`
	Role         string                    `bson:"role"`
	Applicant    *applicantProfileDocument `bson:"applicant,omitempty"`
	Recruiter    *recruiterProfileDocument `bson:"recruiter,omitempty"`
	CreatedAt    time.Time                 `bson:"created_at"`
	UpdatedAt    time.Time                 `bson:"updated_at"`
}

func toProfileDocument(p models.Profile) profileDocument {
	return profileDocument(p)
}

func toTokenDocuments(tokens []models.AuthToken) []authTokenDocument {
	out := make([]authTokenDocument, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, authTokenDocument(t))
	}
	return out
}

func toOpeningDocuments(openings []models.Opening) []openingDocument {
	out := make([]openingDocument, 0, len(openings))
	for _, o := range openings {
		out = append(out, openingDocument{JobID: o.JobID.String(), JobName: o.JobName})
	}
	return out
}

func toApplicantDocument(p *models.ApplicantProfile) *applicantProfileDocument {
	if p == nil {
		return nil
	}
	return &applicantProfileDocument{
		Major:          p.Major,
		GraduationYear: p.GraduationYear,
		Degree:         p.Degree,
		School:         p.School,
		ResumeURL:      p.ResumeURL,
		Skills:         nonNil(p.Skills),
		Interests:      nonNil(p.Interests),
	}
}

func toRecruiterDocument(p *models.RecruiterProfile) *recruiterProfileDocument {
	if p == nil {
		return nil
	}
	return &recruiterProfileDocument{
		Organization: p.Organization,
		Title:        p.Title,
		Skills:       nonNil(p.Skills),
		Interests:    nonNil(p.Interests),
		Openings:     toOpeningDocuments(p.Openings),
	}
}

func toIdentityDocument(i *models.Identity) identityDocument {
	providers := i.Providers
	if providers == nil {
		providers = map[string]string{}
	}
	return identityDocument{
		ID:           i.ID.String(),
		Email:        i.Email,
		PasswordHash: i.PasswordHash,
		ResetToken:   i.ResetToken,
		ResetExpires: i.ResetExpires,
		Providers:    providers,
		Tokens:       toTokenDocuments(i.Tokens),
		Profile:      toProfileDocument(i.Profile),
		Role:         string(i.Role),
		Applicant:    toApplicantDocument(i.RoleProfile.Applicant),
		Recruiter:    toRecruiterDocument(i.RoleProfile.Recruiter),
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

func (d *identityDocument) toModel() (*models.Identity, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	identity := &models.Identity{
		ID:           id,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		ResetToken:   d.ResetToken,
		ResetExpires: d.ResetExpires,
		Providers:    map[string]string{},
		Tokens:       []models.AuthToken{},
		Profile:      models.Profile(d.Profile),
		Role:         models.Role(d.Role),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	for k, v := range d.Providers {
		identity.Providers[k] = v
	}
	for _, t := range d.Tokens {
		identity.Tokens = append(identity.Tokens, models.AuthToken(t))
	}
	if a := d.Applicant; a != nil {
		identity.RoleProfile.Applicant = &models.ApplicantProfile{
			Major:          a.Major,
			GraduationYear: a.GraduationYear,
			Degree:         a.Degree,
			School:         a.School,
			ResumeURL:      a.ResumeURL,
			Skills:         nonNil(a.Skills),
			Interests:      nonNil(a.Interests),
		}
	}
	if r := d.Recruiter; r != nil {
		recruiter := &models.RecruiterProfile{
			Organization: r.Organization,
			Title:        r.Title,
			Skills:       nonNil(r.Skills),
			Interests:    nonNil(r.Interests),
			Openings:     []models.Opening{},
		}
		for _, o := range r.Openings {
			jobID, err := uuid.Parse(o.JobID)
			if err != nil {
				return nil, err
			}
			recruiter.Openings = append(recruiter.Openings, models.Opening{JobID: jobID, JobName: o.JobName})
		}
		identity.RoleProfile.Recruiter = recruiter
	}
	return identity, nil
}

type jobApplicantDocument struct {
	ID   string `bson:"id"`
	Name string `bson:"name"`
}

type jobDocument struct {
	ID          string                 `bson:"_id"`
	Name        string                 `bson:"name"`
	Description string                 `bson:"description"`
	Location    string                 `bson:"location"`
	Company     string                 `bson:"company"`
	Skills      []string               `bson:"skills"`
	OwnerID     string                 `bson:"owner_id"`
	OwnerName   string                 `bson:"owner_name"`
	Recruiters  []string               `bson:"recruiters"`
	Applicants  []jobApplicantDocument `bson:"applicants"`
	CreatedAt   time.Time              `bson:"created_at"`
	UpdatedAt   time.Time              `bson:"updated_at"`
}

func toJobDocument(j *models.Job) jobDocument {
	doc := jobDocument{
		ID:          j.ID.String(),
		Name:        j.Name,
		Description: j.Description,
		Location:    j.Location,
		Company:     j.Company,
		Skills:      nonNil(j.Skills),
		OwnerID:     j.Owner.ID.String(),
		OwnerName:   j.Owner.Name,
		Recruiters:  []string{},
		Applicants:  []jobApplicantDocument{},
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
	for _, r := range j.Recruiters {
		doc.Recruiters = append(doc.Recruiters, r.String())
	}
	for _, a := range j.Applicants {
		doc.Applicants = append(doc.Applicants, jobApplicantDocument{ID: a.ID.String(), Name: a.Name})
	}
	return doc
}

func (d *jobDocument) toModel() (*models.Job, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	ownerID, err := uuid.Parse(d.OwnerID)
	if err != nil {
		return nil, err
	}
	job := &models.Job{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Location:    d.Location,
		Company:     d.Company,
		Skills:      nonNil(d.Skills),
		Owner:       models.JobOwner{ID: ownerID, Name: d.OwnerName},
		Recruiters:  []uuid.UUID{},
		Applicants:  []models.JobApplicant{},
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for _, r := range d.Recruiters {
		rid, err := uuid.Parse(r)
		if err != nil {
			return nil, err
		}
		job.Recruiters = append(job.Recruiters, rid)
	}
	for _, a := range d.Applicants {
		aid, err := uuid.Parse(a.ID)
		if err != nil {
			return nil, err
		}
		job.Applicants = append(job.Applicants, models.JobApplicant{ID: aid, Name: a.Name})
	}
	return job, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
