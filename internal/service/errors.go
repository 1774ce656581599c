package service

import "errors"

var (
	// ErrAssignmentNotFound indicates the requested assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrCourseNotFound indicates the requested course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrSubmissionNotFound indicates the user has no submission for the assignment.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrGradeNotFound indicates the requested grade does not exist.
	ErrGradeNotFound = errors.New("grade not found")
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotEnrolled indicates the user is not a participant of the course.
	ErrNotEnrolled = errors.New("user is not enrolled in the course")
	// ErrForbidden indicates the caller may not act on the resource.
	ErrForbidden = errors.New("operation not permitted")
	// ErrSubmissionsClosed indicates the assignment does not accept submissions yet.
	ErrSubmissionsClosed = errors.New("assignment is not accepting submissions")
	// ErrSubmissionLocked indicates the submission can no longer be edited.
	ErrSubmissionLocked = errors.New("submission is locked")
	// ErrPluginDisabled indicates the sub-plugin is not enabled for the assignment.
	ErrPluginDisabled = errors.New("plugin is not enabled for this assignment")
	// ErrInvalidGrade indicates the grade is outside the assignment's range or scale.
	ErrInvalidGrade = errors.New("invalid grade")
	// ErrNothingStaged indicates a batch upload was submitted without staged files.
	ErrNothingStaged = errors.New("no files staged for upload")
	// ErrInvalidBundle indicates the hidden values of a form were tampered with.
	ErrInvalidBundle = errors.New("invalid form bundle")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	// ErrUploadScanFailed indicates validation of the file failed.
	ErrUploadScanFailed = errors.New("file scanning failed")
	// ErrUnknownAction indicates an unsupported page action.
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnknownFileArea indicates a file area the assignment does not own.
	ErrUnknownFileArea = errors.New("unknown file area")
	// ErrTooManyFiles indicates the upload would exceed the plugin's file limit.
	ErrTooManyFiles = errors.New("too many files")
)
