package common

// MaxUploadBytes is the client-side ceiling for a single staged payload,
// enforced identically for images and audio before any network call.
const MaxUploadBytes int64 = 52428800 // 50 MiB
