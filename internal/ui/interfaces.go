package ui

// Prompter defines interface for user interaction
type Prompter interface {
	PromptOwner() (string, error)
	PromptRepo() (string, error)
	ConfirmImport(file, owner, repo string) (bool, error)
}

// DefaultPrompter implements the actual prompting logic
type DefaultPrompter struct{}

// PromptOwner asks for the user or organization owning the repository
func (p *DefaultPrompter) PromptOwner() (string, error) {
	return PromptText("User or organization")
}

// PromptRepo asks for the repository name
func (p *DefaultPrompter) PromptRepo() (string, error) {
	return PromptText("Repository")
}

// ConfirmImport asks before any issue is created
func (p *DefaultPrompter) ConfirmImport(file, owner, repo string) (bool, error) {
	return ConfirmImport(file, owner, repo)
}

// MockPrompter for testing
type MockPrompter struct {
	Owner      string
	OwnerError error

	Repo      string
	RepoError error

	Confirmed         bool
	ConfirmationError error

	// Call tracking
	PromptOwnerCalled   bool
	PromptRepoCalled    bool
	ConfirmImportCalled bool
}

// PromptOwner mocks the owner prompt
func (m *MockPrompter) PromptOwner() (string, error) {
	m.PromptOwnerCalled = true
	return m.Owner, m.OwnerError
}

// PromptRepo mocks the repository prompt
func (m *MockPrompter) PromptRepo() (string, error) {
	m.PromptRepoCalled = true
	return m.Repo, m.RepoError
}

// ConfirmImport mocks confirmation
func (m *MockPrompter) ConfirmImport(file, owner, repo string) (bool, error) {
	m.ConfirmImportCalled = true
	return m.Confirmed, m.ConfirmationError
}
