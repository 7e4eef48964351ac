package main

//go:generate swag init -g cmd/monitor/main.go -o docs

// @title           Bid Monitor API
// @version         0.1.0
// @description     Health, metrics and last-run status of the SuperBid bid monitor in scheduled mode.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
