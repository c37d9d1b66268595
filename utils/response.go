package utils

import "github.com/gin-gonic/gin"

// Format standar JSON yang diterima frontend. Payload digabung di level atas:
// Contoh sukses : { "success": true,  "message": "Logro agregado", "logros": [ ... ] }
// Contoh gagal  : { "success": false, "message": "Validation failed", "errors": { "id": "is required" } }

// BuildResponseSuccess dipakai saat request berhasil (HTTP 200/201).
// payload boleh nil; key-nya ditaruh sejajar dengan success & message.
func BuildResponseSuccess(message string, payload gin.H) gin.H {
	resp := gin.H{"success": true}
	if message != "" {
		resp["message"] = message
	}
	for k, v := range payload {
		resp[k] = v
	}
	return resp
}

// BuildResponseFailed dipakai saat terjadi error (HTTP 400, 404, 500, dll).
// errs berisi detail (misal map field -> pesan); nil berarti tidak ditampilkan.
func BuildResponseFailed(message string, errs any) gin.H {
	resp := gin.H{"success": false, "message": message}
	if errs != nil {
		resp["errors"] = errs
	}
	return resp
}
