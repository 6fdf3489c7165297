package main

import "github.com/Jagdish1803/employee-tracker-sub000/internal/app/server"

func main() {
	server.Run()
}
