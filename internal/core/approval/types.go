package approval

// User is a registered account on the approval server. Approved is the
// Super Admin gate; unapproved users cannot act on anything.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	EmailID  string `json:"emailId"`
	Role     Role   `json:"role"`
	Approved bool   `json:"approved"`
}

// Project groups TDS records and carries the per-role user assignments
// made at creation time (and updated later by L1 for L2/L3).
type Project struct {
	ID          int64             `json:"projectId"`
	Name        string            `json:"projectName"`
	Description string            `json:"projectDescription"`
	Status      bool              `json:"projectStatus"`
	Remarks     string            `json:"remarks"`
	Stakeholder *User             `json:"stakeholder,omitempty"`
	RoleUsers   map[string][]User `json:"roleUsers,omitempty"`
}

// TDS is a Technical Data Sheet moving through the approval chain. The
// server owns its lifecycle; the client only renders it and triggers
// transitions. DocumentPath is a comma-joined list of storage paths.
type TDS struct {
	ID           int64    `json:"tdsId"`
	Name         string   `json:"tdsName"`
	DocumentPath string   `json:"documentPath"`
	Status       string   `json:"status"`
	Remarks      string   `json:"remarks"`
	Approved     bool     `json:"approved"`
	CurrentStep  int      `json:"currentStep"`
	Project      *Project `json:"project,omitempty"`
}

// Documents returns the individual document references of the TDS.
func (t TDS) Documents() []string {
	return SplitDocuments(t.DocumentPath)
}

// ProjectName returns the owning project's name, or empty when the
// server omitted the project.
func (t TDS) ProjectName() string {
	if t.Project == nil {
		return ""
	}
	return t.Project.Name
}

// CreatedBy returns the username of the project stakeholder that
// originated the TDS, or empty when unknown.
func (t TDS) CreatedBy() string {
	if t.Project == nil || t.Project.Stakeholder == nil {
		return ""
	}
	return t.Project.Stakeholder.Username
}

// S3Document is one entry in the stakeholder/contractor shared
// document repository.
type S3Document struct {
	Filename     string `json:"filename"`
	Size         int64  `json:"size"`
	LastModified string `json:"lastModified"`
	S3Key        string `json:"s3Key"`
}
