package dto

// ImportOptions tune a bank CSV import. MappingRules maps a description
// substring to a category name.
type ImportOptions struct {
	Force        bool              `json:"force"`
	MappingRules map[string]string `json:"mappingRules"`
}

type RestoreResult struct {
	Transactions      int `json:"transactions"`
	Categories        int `json:"categories"`
	Budgets           int `json:"budgets"`
	Goals             int `json:"goals"`
	Templates         int `json:"templates"`
	LendingRecords    int `json:"lendingRecords"`
	RecurringPayments int `json:"recurringPayments"`
}

type CloudBackupResponse struct {
	Rows int `json:"rows"`
}
