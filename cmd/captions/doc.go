// Command captions is the command-line front end of the caption pipeline.
//
//	captions resolve <url>                 print the video ID
//	captions fetch <url> [--json|--vtt]    download and print captions
//	captions parse <file|->                parse a local WebVTT file
//	captions follow <url|file>             replay captions against a simulated player
package main
