package models

// ImportRequest описывает XLSX файлы расписания в бакете загрузки.
type ImportRequest struct {
	UserID string   `json:"user_id"`
	Files  []string `json:"files" binding:"required,min=1"`
}

type ImportResult struct {
	FileName   string `json:"file_name"`
	TargetFile string `json:"target_file,omitempty"`
	Slots      int    `json:"slots"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
