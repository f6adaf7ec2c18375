package rte

import "strconv"

// Code is a SCORM 1.2 error code as reported by LMSGetLastError.
type Code int

const (
	NoError            Code = 0
	GeneralException   Code = 101
	InvalidArgument    Code = 201
	CannotHaveChildren Code = 202
	NotAnArray         Code = 203
	NotInitialized     Code = 301
	NotImplemented     Code = 401
	InvalidSetValue    Code = 402
	ReadOnlyElement    Code = 403
	WriteOnlyElement   Code = 404
	IncorrectDataType  Code = 405
)

var errorStrings = map[Code]string{
	NoError:            "No error",
	GeneralException:   "General exception",
	InvalidArgument:    "Invalid argument error",
	CannotHaveChildren: "Element cannot have children",
	NotAnArray:         "Element not an array",
	NotInitialized:     "Not initialized",
	NotImplemented:     "Not implemented error",
	InvalidSetValue:    "Invalid set value",
	ReadOnlyElement:    "Element is read only",
	WriteOnlyElement:   "Element is write only",
	IncorrectDataType:  "Incorrect data type",
}

func (c Code) String() string {
	return strconv.Itoa(int(c))
}

// ErrorString returns the fixed description of a code given as text; unknown codes are "Unknown error".
func ErrorString(code string) string {
	n, err := strconv.Atoi(code)
	if err != nil {
		return "Unknown error"
	}
	if s, ok := errorStrings[Code(n)]; ok {
		return s
	}
	return "Unknown error"
}
