package models

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobOwner is the posting recruiter, with the name it had at posting time.
type JobOwner struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// JobApplicant is an applicant entry on a job.
type JobApplicant struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Job struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description" db:"description"`
	Location    string         `json:"location" db:"location"`
	Company     string         `json:"company" db:"company"`
	Skills      []string       `json:"skills" db:"skills"`
	Owner       JobOwner       `json:"owner" db:"owner"`
	Recruiters  []uuid.UUID    `json:"recruiters" db:"recruiters"`
	Applicants  []JobApplicant `json:"applicants" db:"applicants"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}

// CanManage reports whether id is the owner or one of the listed recruiters.
func (j *Job) CanManage(id uuid.UUID) bool {
	return j.Owner.ID == id || slices.Contains(j.Recruiters, id)
}

func (j *Job) HasApplicant(id uuid.UUID) bool {
	return slices.ContainsFunc(j.Applicants, func(a JobApplicant) bool { return a.ID == id })
}

func (j *Job) Clone() *Job {
	out := *j
	out.Skills = slices.Clone(j.Skills)
	out.Recruiters = slices.Clone(j.Recruiters)
	out.Applicants = slices.Clone(j.Applicants)
	return &out
}

// JobPatch lists the job fields an update touches; nil fields are left alone.
type JobPatch struct {
	Name        *string
	Description *string
	Location    *string
	Company     *string
	Skills      []string
}

func (p *JobPatch) Apply(j *Job) {
	if p.Name != nil {
		j.Name = *p.Name
	}
	if p.Description != nil {
		j.Description = *p.Description
	}
	if p.Location != nil {
		j.Location = *p.Location
	}
	if p.Company != nil {
		j.Company = *p.Company
	}
	if p.Skills != nil {
		j.Skills = slices.Clone(p.Skills)
	}
}

var tagSeparator = regexp.MustCompile(`[ ,]+`)

// SplitTags turns "go, sql  redis" into a de-duplicated list of tags.
func SplitTags(s string) []string {
	out := []string{}
	for _, tag := range tagSeparator.Split(strings.TrimSpace(s), -1) {
		if tag == "" || slices.Contains(out, tag) {
			continue
		}
		out = append(out, tag)
	}
	return out
}
