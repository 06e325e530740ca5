package models

import "time"

// Attachment kinds accepted by the upload endpoint. Each one names the
// application field that records the stored path.
const (
	FileKindTranscript = "transcript"
	FileKindCV         = "cv"
	FileKindPhoto      = "photo"
)

// FieldFinalPercentage is the only numeric descriptive field.
const FieldFinalPercentage = "final_percentage"

// ApplicationFields lists the descriptive columns in storage order.
// Anything not in this list (id, user_id, timestamps) is never written from
// caller-supplied data.
var ApplicationFields = []string{
	"first_name",
	"middle_name",
	"last_name",
	"contact_number",
	"gender",
	FieldFinalPercentage,
	"tentative_ranking",
	"final_year_project",
	"other_projects",
	"publications",
	"extracurricular",
	"professional_experience",
	"strong_points",
	"weak_points",
	FileKindTranscript,
	FileKindCV,
	FileKindPhoto,
	"preferred_programs",
	"references",
	"statement_of_purpose",
	"intended_research_areas",
	"english_proficiency",
	"leadership_experience",
	"availability_to_start",
	"additional_certifications",
}

var applicationFieldSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(ApplicationFields))
	for _, f := range ApplicationFields {
		m[f] = struct{}{}
	}
	return m
}()

// IsApplicationField reports whether name is a writable descriptive field.
func IsApplicationField(name string) bool {
	_, ok := applicationFieldSet[name]
	return ok
}

// IsFileKind reports whether kind is a valid attachment kind.
func IsFileKind(kind string) bool {
	switch kind {
	case FileKindTranscript, FileKindCV, FileKindPhoto:
		return true
	}
	return false
}

// Application is a student's intake record. All descriptive fields are
// nullable; nil means "never provided".
type Application struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`

	FirstName       *string  `json:"first_name"`
	MiddleName      *string  `json:"middle_name"`
	LastName        *string  `json:"last_name"`
	ContactNumber   *string  `json:"contact_number"`
	Gender          *string  `json:"gender"`
	FinalPercentage *float64 `json:"final_percentage"`

	TentativeRanking       *string `json:"tentative_ranking"`
	FinalYearProject       *string `json:"final_year_project"`
	OtherProjects          *string `json:"other_projects"`
	Publications           *string `json:"publications"`
	Extracurricular        *string `json:"extracurricular"`
	ProfessionalExperience *string `json:"professional_experience"`
	StrongPoints           *string `json:"strong_points"`
	WeakPoints             *string `json:"weak_points"`

	Transcript *string `json:"transcript"`
	CV         *string `json:"cv"`
	Photo      *string `json:"photo"`

	PreferredPrograms        *string `json:"preferred_programs"`
	References               *string `json:"references"`
	StatementOfPurpose       *string `json:"statement_of_purpose"`
	IntendedResearchAreas    *string `json:"intended_research_areas"`
	EnglishProficiency       *string `json:"english_proficiency"`
	LeadershipExperience     *string `json:"leadership_experience"`
	AvailabilityToStart      *string `json:"availability_to_start"`
	AdditionalCertifications *string `json:"additional_certifications"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TextField returns the slot holding the named text field, or nil when name
// is not a text field (unknown, or final_percentage).
func (a *Application) TextField(name string) **string {
	switch name {
	case "first_name":
		return &a.FirstName
	case "middle_name":
		return &a.MiddleName
	case "last_name":
		return &a.LastName
	case "contact_number":
		return &a.ContactNumber
	case "gender":
		return &a.Gender
	case "tentative_ranking":
		return &a.TentativeRanking
	case "final_year_project":
		return &a.FinalYearProject
	case "other_projects":
		return &a.OtherProjects
	case "publications":
		return &a.Publications
	case "extracurricular":
		return &a.Extracurricular
	case "professional_experience":
		return &a.ProfessionalExperience
	case "strong_points":
		return &a.StrongPoints
	case "weak_points":
		return &a.WeakPoints
	case FileKindTranscript:
		return &a.Transcript
	case FileKindCV:
		return &a.CV
	case FileKindPhoto:
		return &a.Photo
	case "preferred_programs":
		return &a.PreferredPrograms
	case "references":
		return &a.References
	case "statement_of_purpose":
		return &a.StatementOfPurpose
	case "intended_research_areas":
		return &a.IntendedResearchAreas
	case "english_proficiency":
		return &a.EnglishProficiency
	case "leadership_experience":
		return &a.LeadershipExperience
	case "availability_to_start":
		return &a.AvailabilityToStart
	case "additional_certifications":
		return &a.AdditionalCertifications
	}
	return nil
}

// FieldSlots returns pointers to every descriptive field in
// ApplicationFields order, suitable for sql.Row.Scan and as query args.
func (a *Application) FieldSlots() []any {
	slots := make([]any, 0, len(ApplicationFields))
	for _, name := range ApplicationFields {
		if name == FieldFinalPercentage {
			slots = append(slots, &a.FinalPercentage)
			continue
		}
		slots = append(slots, a.TextField(name))
	}
	return slots
}

// FieldValues returns the descriptive field values in ApplicationFields
// order; nil pointers become SQL NULL.
func (a *Application) FieldValues() []any {
	values := make([]any, 0, len(ApplicationFields))
	for _, name := range ApplicationFields {
		if name == FieldFinalPercentage {
			values = append(values, a.FinalPercentage)
			continue
		}
		values = append(values, *a.TextField(name))
	}
	return values
}

// ApplicationSummary is the fixed subset shown in the admin listing.
type ApplicationSummary struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Email           string    `json:"email"`
	FirstName       *string   `json:"first_name"`
	LastName        *string   `json:"last_name"`
	ContactNumber   *string   `json:"contact_number"`
	Gender          *string   `json:"gender"`
	FinalPercentage *float64  `json:"final_percentage"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
