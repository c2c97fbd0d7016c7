package extractor

// User facing messages for URL inputs.
const (
	InvalidURLMessage    = "Please enter a valid URL (including http:// or https://)"
	ExtractFailedMessage = "Failed to extract content from the provided URL. Please check the URL and try again."
	NoContentMessage     = "Could not extract meaningful content from this URL. Please try a different article."
)
