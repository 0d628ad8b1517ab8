/*

Process of instruction selection

Selection DAG (ir) ->
	select ->
Machine Instructions (asm) ->
	render ->
Assembly Text

Memory Image Text ->
	assemble ->
Memory Image (vscpu) ->
	run ->
Memory Dump

*/
package compiler
