package domain

import "errors"

var (
	// ErrSubscriptionFailed is returned when subscription to events fails
	ErrSubscriptionFailed = errors.New("subscription failed")

	// ErrAlreadyGenerated is returned when a token's artwork has already been
	// generated and written on-chain
	ErrAlreadyGenerated = errors.New("token already generated")

	// ErrGenerationExhausted is returned when every generation attempt and
	// fallback has failed for a token
	ErrGenerationExhausted = errors.New("generation attempts exhausted")

	// ErrNoImageData is returned when the provider responds without image
	// payload or URL
	ErrNoImageData = errors.New("no image data in response")

	// ErrCollectionNotFound is returned when a collection is not tracked
	ErrCollectionNotFound = errors.New("collection not found")
)
