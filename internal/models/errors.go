package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound = errors.New("resource not found") // General not found

	// User & Authentication Errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user with this username already exists")
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden          = errors.New("forbidden")    // Authenticated, but lacks permission

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// Story & Prompt Errors
	ErrStoryNotFound          = errors.New("story not found")
	ErrStoryNotActive         = errors.New("story is not accepting chapter prompts")
	ErrPromptNotFound         = errors.New("prompt not found")
	ErrPromptAlreadySubmitted = errors.New("prompt already submitted for this chapter")
	ErrVotingClosed           = errors.New("voting has ended for this prompt")
	ErrVotingStillOpen        = errors.New("voting is still open for this slot")
	ErrAlreadyVoted           = errors.New("already voted for this prompt")
	ErrChapterNotFound        = errors.New("chapter not found")
	ErrChapterAlreadyExists   = errors.New("chapter already exists for this slot")

	// Credit Errors
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrPackageNotFound     = errors.New("credit package not found")

	// Purchase Errors
	ErrPurchaseNotFound  = errors.New("purchase not found")
	ErrInvalidSignature  = errors.New("webhook signature verification failed")
	ErrPurchaseCompleted = errors.New("purchase already completed")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)
