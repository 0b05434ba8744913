package main

// General API documentation for swaggo. Build with -tags=swagger after
// generating docs to serve the UI.
//
// @title           chatd API
// @version         1.0
// @description     Local HTTP gateway serving chat completions from a single GGUF model.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
