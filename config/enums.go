package config

//go:generate go tool go-enum --marshal --names --values

// Encoding used for prepared local images.
// ENUM(auto, png, jpeg)
type ImageFormat int

// Ext returns file extension for the encoding, auto has none.
func (f ImageFormat) Ext() string {
	switch f {
	case ImageFormatPng:
		return ".png"
	case ImageFormatJpeg:
		return ".jpg"
	default:
		return ""
	}
}
