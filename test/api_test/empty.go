package apitest

/**
	This is an empty file which is needed to get coverpkg to work in the CI.
	It needs at least one file in the package which is not a "test" file as api_test.go is.
	Without this, `go test ./... -coverpkg=./...` fails with "no non-test Go files".

	See https://github.com/golang/go/issues/27333.
**/
