// Package qrcode renders provisioning URIs as QR code images that
// authenticator apps can scan during enrollment.
//
// PNG returns raw image bytes; DataURI wraps the same image in a
// "data:image/png;base64," URI that browsers and JSON clients can display
// directly. Rendering is delegated to github.com/skip2/go-qrcode.
//
//	png, err := qrcode.PNG(uri, qrcode.WithSize(320))
//	src, err := qrcode.DataURI(uri)
//
// The images encode the shared secret. Callers must treat them with the same
// care as the secret itself and never persist or log them.
package qrcode
