package dto

// Success message codes
const (
	CodeUserRegistered          = "USER_REGISTERED"
	CodeLoginSuccess            = "LOGIN_SUCCESS"
	CodeUserProfileRetrieved    = "USER_PROFILE_RETRIEVED"
	CodeTokenRefreshed          = "TOKEN_REFRESHED"
	CodeLogoutSuccess           = "LOGOUT_SUCCESS"
	CodePasswordResetSuccess    = "PASSWORD_RESET_SUCCESS"
	CodePatientProfileRetrieved = "PATIENT_PROFILE_RETRIEVED"
	CodePatientProfileUpdated   = "PATIENT_PROFILE_UPDATED"
	CodeGoalsRetrieved          = "GOALS_RETRIEVED"
	CodeGoalSaved               = "GOAL_SAVED"
	CodeRemindersRetrieved      = "REMINDERS_RETRIEVED"
	CodeHealthTipRetrieved      = "HEALTH_TIP_RETRIEVED"
	CodePatientsRetrieved       = "PATIENTS_RETRIEVED"
	CodePatientDetailsRetrieved = "PATIENT_DETAILS_RETRIEVED"
	CodeHealthy                 = "HEALTHY"
)

// Error message codes
const (
	CodeMissingFields        = "MISSING_FIELDS"
	CodeMissingCredentials   = "MISSING_CREDENTIALS"
	CodeMissingRefreshToken  = "MISSING_REFRESH_TOKEN"
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeInvalidRole          = "INVALID_ROLE"
	CodeInvalidDate          = "INVALID_DATE"
	CodeUserExists           = "USER_EXISTS"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeInvalidToken         = "INVALID_TOKEN"
	CodeInvalidRefreshToken  = "INVALID_REFRESH_TOKEN"
	CodeRefreshTokenNotFound = "REFRESH_TOKEN_NOT_FOUND"
	CodeForbidden            = "FORBIDDEN"
	CodeUserNotFound         = "USER_NOT_FOUND"
	CodePatientNotFound      = "PATIENT_NOT_FOUND"
	CodeProviderNotFound     = "PROVIDER_NOT_FOUND"
	CodeHealthTipNotFound    = "HEALTH_TIP_NOT_FOUND"
	CodeRouteNotFound        = "ROUTE_NOT_FOUND"
	CodeRateLimited          = "RATE_LIMITED"
	CodeInternalError        = "INTERNAL_ERROR"
	CodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
)
