// Agent Chat - terminal client for a remote conversational agent
package main

func main() {
	Execute()
}
