package constants

// Common string constants used throughout the codebase
const (
	ServiceName = "lendborrow-api"

	// Environments
	StageProd  = "prod"
	StageDev   = "dev"
	StageLocal = "local"

	// Navigation destinations
	SignupPath = "/signup"
	RootPath   = "/"

	// Contract
	LendBorrowContractName = "LendBorrowContract"
	CreateLenderMethod     = "createLender"
	GetWalletTypeMethod    = "getWalletType"
)

// IsValidStage checks if the provided stage string is one of the defined valid stages.
func IsValidStage(stage string) bool {
	switch stage {
	case StageProd, StageDev, StageLocal:
		return true
	default:
		return false
	}
}
