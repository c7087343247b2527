package repoargs

type RepositoryName string

const (
	AccountRepoName     RepositoryName = "account"
	TransactionRepoName RepositoryName = "transaction"
	LimitRepoName       RepositoryName = "spending_limit"
	UserRepoName        RepositoryName = "user"
)
