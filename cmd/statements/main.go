// Command statements reconstructs financial statement tables from SEC 10-K filings.
package main

func main() {
	Execute()
}
