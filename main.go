package main

import "todo-list.com/todo-list/cmd"

func main() {
	cmd.Execute()
}
