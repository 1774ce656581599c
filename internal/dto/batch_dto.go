package dto

// BatchUploadPrepareRequest selects the users a batch of feedback files goes to.
type BatchUploadPrepareRequest struct {
	UserIDs []uint `json:"user_ids" validate:"required,min=1,dive,required"`
}

// BatchUploadBundle is the set of hidden values a batch upload form posts back.
type BatchUploadBundle struct {
	ID            uint   `json:"id" form:"id" validate:"required"`
	Operation     string `json:"operation" form:"operation" validate:"required,eq=plugingradingbatchoperation_file_uploadfiles"`
	Action        string `json:"action" form:"action" validate:"required,eq=viewpluginpage"`
	PluginAction  string `json:"pluginaction" form:"pluginaction" validate:"required,eq=uploadfiles"`
	Plugin        string `json:"plugin" form:"plugin" validate:"required,eq=file"`
	PluginSubtype string `json:"pluginsubtype" form:"pluginsubtype" validate:"required,eq=assignfeedback"`
	SelectedUsers string `json:"selectedusers" form:"selectedusers" validate:"required"`
}

// FileOptions are the limits of the file manager element.
type FileOptions struct {
	Subdirs        bool     `json:"subdirs"`
	MaxBytes       int64    `json:"maxbytes"`
	MaxFiles       int      `json:"maxfiles"`
	AcceptedTypes  []string `json:"accepted_types"`
	ReturnTypes    string   `json:"return_types"`
	StagingArea    string   `json:"staging_area"`
	StagingItemID  uint     `json:"staging_item_id"`
	StagingContext uint     `json:"staging_context"`
}

// SelectedUser is one row of the selected users listing.
type SelectedUser struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
}

// BatchUploadFormResponse describes the batch feedback upload form.
type BatchUploadFormResponse struct {
	Header        string               `json:"header"`
	SelectedLabel string               `json:"selected_label"`
	SelectedUsers []SelectedUser       `json:"selected_users"`
	Files         FileOptions          `json:"files"`
	Hidden        BatchUploadBundle    `json:"hidden"`
	Staged        []StoredFileResponse `json:"staged"`
}

// BatchUploadResult reports what a batch submit copied.
type BatchUploadResult struct {
	AssignmentID uint   `json:"assignment_id"`
	Users        []uint `json:"users"`
	FilesPerUser int    `json:"files_per_user"`
}
