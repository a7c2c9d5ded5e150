package models

// ImportRowError describes a single rejected row from a content workbook.
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ImportSummary reports the outcome of a content workbook import.
type ImportSummary struct {
	TotalRows        int              `json:"total_rows"`
	ProcessedRows    int              `json:"processed_rows"`
	SuccessCount     int              `json:"success_count"`
	ErrorCount       int              `json:"error_count"`
	ImportedUnits    int              `json:"imported_units"`
	CreatedQuestions int              `json:"created_questions"`
	Errors           []ImportRowError `json:"errors,omitempty"`
	ProcessingTime   string           `json:"processing_time"`
}
