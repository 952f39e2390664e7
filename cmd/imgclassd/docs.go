package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           imgclassd API
// @version         1.0
// @description     Upload images, classify them with an ONNX model and list stored predictions.
//
// @contact.name   imgclassd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
