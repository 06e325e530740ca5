package common

// SessionCookieName is the default cookie carrying the signed session token.
const SessionCookieName = "admissions_session"

// TempPasswordLength is the length of passwords generated for provisioned
// students and admin resets.
const TempPasswordLength = 12

const tempPasswordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
