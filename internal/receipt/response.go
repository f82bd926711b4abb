package receipt

// Status is the typed outcome of running a document through the parser.
type Status int

const (
	// StatusUnrecognizedFormat means the file extension is unsupported or
	// no extractor matched the document text.
	StatusUnrecognizedFormat Status = iota

	// StatusUnknownError means the document caused an internal failure that
	// was caught and downgraded. It never surfaces as a crash.
	StatusUnknownError

	// StatusOK means a complete record was extracted and tagged.
	StatusOK
)

// Response is the parser outcome handed to the transport.
type Response struct {
	Status   Status
	FileName string
	Record   *Record
}

// Success reports whether FileName and Record are populated.
func (r Response) Success() bool {
	return r.Status == StatusOK
}

// UnrecognizedFormat builds a response for unsupported input.
func UnrecognizedFormat() Response {
	return Response{Status: StatusUnrecognizedFormat}
}

// UnknownError builds a response for a downgraded internal failure.
func UnknownError() Response {
	return Response{Status: StatusUnknownError}
}

// Ok builds a success response.
func Ok(fileName string, record Record) Response {
	return Response{Status: StatusOK, FileName: fileName, Record: &record}
}
