package domain

type Source struct {
	ID     int64
	Name   string
	APIURL string
}
