package main

// Exit codes
const (
	ExitSuccess       = 0 // Success
	ExitError         = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError   = 2 // Configuration error (no library, invalid config)
	ExitDataError     = 3 // Data error (embedding space mismatch, malformed input)
	ExitOllamaError   = 4 // Ollama not available
	ExitModelNotFound = 5 // Embedding model not pulled
)
