package consts

// Mongo collection names.
const (
	ReputationCollection  = "reputation"
	LoanArchiveCollection = "loanArchive"
)
