package main

const sessionIDSessionKey = "sessionID"
