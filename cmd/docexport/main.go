// Утилита docexport экспортирует TipTap JSON документа из файла в PDF или HTML без сервера и базы данных.
//
// Примеры:
//
//	docexport pdf doc.json -o doc.pdf --title "Регламент"
//	docexport html doc.json --title "Регламент" > doc.html
package main

import (
	"fmt"
	"os"
)

var version = "DEV"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
