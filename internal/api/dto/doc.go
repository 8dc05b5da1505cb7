// Package dto contiene las formas de request/response del API de Email EZ.
// Los nombres JSON son los del wire (camelCase); no se persisten localmente.
package dto
