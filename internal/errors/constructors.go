package errors

// Config errors

func ConfigNotFound(path string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(path string, cause error) *BuildError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file is invalid").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *BuildError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Content errors

func ContentParseFailed(page string, cause error) *BuildError {
	return Wrap(cause, CategoryContent, SeverityError, "content file could not be parsed").
		WithContext("page", page)
}

// Render and output errors

func RenderFailed(page string, cause error) *BuildError {
	return Wrap(cause, CategoryRender, SeverityFatal, "page rendering failed").
		WithContext("page", page)
}

func LayoutError(name string, cause error) *BuildError {
	return Wrap(cause, CategoryRender, SeverityFatal, "layout could not be loaded").
		WithContext("layout", name)
}

func OutputError(path string, cause error) *BuildError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "writing output failed").
		WithContext("path", path)
}
