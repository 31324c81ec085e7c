// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

// ErrorCode is one entry of the fixed API error table (auth 1000s,
// database 4000s, server 5000s, api 6000s).
type ErrorCode struct {
	Code        int
	Message     string
	StatusCode  int
	Description string
}

// ToMap renders the code the way the HTTP error envelope expects it:
// {code, message, description}.
func (e ErrorCode) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"code":        e.Code,
		"message":     e.Message,
		"description": e.Description,
	}
}

// Authentication errors (1000-1999).
var (
	InvalidCredentials  = ErrorCode{1000, "INVALID CREDENTIALS", 401, "Invalid credentials"}
	UserAlreadyExists   = ErrorCode{1001, "USER ALREADY EXISTS", 400, "User already exists"}
	TokenExpired        = ErrorCode{1002, "TOKEN EXPIRED", 401, "Authentication token has expired"}
	InvalidToken        = ErrorCode{1003, "INVALID TOKEN", 401, "Invalid authentication token"}
	UnauthorizedAccess  = ErrorCode{1004, "UNAUTHORIZED ACCESS", 403, "User does not have permission to access this resource"}
)

// Database errors (4000-4999).
var (
	DatabaseError  = ErrorCode{4000, "DATABASE ERROR", 500, "An error occurred while accessing the database"}
	RecordNotFound = ErrorCode{4001, "RECORD NOT FOUND", 404, "The requested record was not found"}
	DuplicateRecord = ErrorCode{4002, "DUPLICATE RECORD", 400, "A record with this information already exists"}
)

// Server errors (5000-5999).
var (
	InternalServerError = ErrorCode{5000, "INTERNAL SERVER ERROR", 500, "An unexpected error occurred"}
	ServiceUnavailable  = ErrorCode{5001, "SERVICE UNAVAILABLE", 503, "The service is temporarily unavailable"}
	UnknownAPIError     = ErrorCode{5002, "UNKNOWN API ERROR", 500, "An unknown error occurred"}
	QueueUnavailable    = ErrorCode{5003, "QUEUE UNAVAILABLE", 503, "The queue is temporarily unavailable"}
)

// API errors (6000-6999).
var (
	APIError = ErrorCode{6000, "API ERROR", 500, "An error occurred while accessing the API"}
)

// codeTable backs GetErrorByCode; built once from the declared codes above.
var codeTable = map[int]ErrorCode{
	InvalidCredentials.Code: InvalidCredentials,
	UserAlreadyExists.Code:  UserAlreadyExists,
	TokenExpired.Code:       TokenExpired,
	InvalidToken.Code:       InvalidToken,
	UnauthorizedAccess.Code: UnauthorizedAccess,
	DatabaseError.Code:      DatabaseError,
	RecordNotFound.Code:     RecordNotFound,
	DuplicateRecord.Code:    DuplicateRecord,
	InternalServerError.Code: InternalServerError,
	ServiceUnavailable.Code:  ServiceUnavailable,
	UnknownAPIError.Code:     UnknownAPIError,
	QueueUnavailable.Code:    QueueUnavailable,
	APIError.Code:            APIError,
}

// GetErrorByCode looks up an ErrorCode by its numeric code, falling back
// to UnknownAPIError when the code is not in the table.
func GetErrorByCode(code int) ErrorCode {
	if ec, ok := codeTable[code]; ok {
		return ec
	}
	return UnknownAPIError
}
